package tickets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TicketData carries everything the renderer needs. Rendering is a pure
// function of this struct: identical inputs produce identical bytes, so a
// retry after a partial failure cannot diverge from the first attempt.
type TicketData struct {
	TicketID  string
	EventID   uint
	EventName string
	Venue     string
	BuyerName string
	TierName  string
	IssuedAt  time.Time
}

// QRPayload is the globally unique content encoded in the QR code.
func QRPayload(ticketID string, eventID uint, issuedAt time.Time) string {
	return fmt.Sprintf("%s|%d|%d", ticketID, eventID, issuedAt.Unix())
}

// RenderQR produces a standalone QR PNG for gate scanning.
func RenderQR(ticketID string, eventID uint, issuedAt time.Time) ([]byte, error) {
	return qrcode.Encode(QRPayload(ticketID, eventID, issuedAt), qrcode.Medium, 256)
}

const (
	ticketWidth  = 640
	ticketHeight = 320
	qrSize       = 232
)

// RenderTicket composes the full ticket PNG: event details on the left, the
// QR code on the right.
func RenderTicket(data TicketData) ([]byte, error) {
	qrBytes, err := RenderQR(data.TicketID, data.EventID, data.IssuedAt)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	qrImg, err := png.Decode(bytes.NewReader(qrBytes))
	if err != nil {
		return nil, fmt.Errorf("decode qr: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, ticketWidth, ticketHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	// Header band
	header := image.Rect(0, 0, ticketWidth, 48)
	draw.Draw(canvas, header, &image.Uniform{color.RGBA{24, 24, 64, 255}}, image.Point{}, draw.Src)
	drawText(canvas, 16, 30, color.White, data.EventName)

	black := color.RGBA{0, 0, 0, 255}
	grey := color.RGBA{90, 90, 90, 255}
	y := 84
	for _, line := range ticketLines(data) {
		drawText(canvas, 16, y, black, line)
		y += 26
	}
	drawText(canvas, 16, ticketHeight-20, grey, "Ticket "+data.TicketID)

	// Scale the 256px QR into its slot by nearest-neighbour; both sizes are
	// fixed so the result is stable.
	slot := image.Rect(ticketWidth-qrSize-24, (ticketHeight-qrSize)/2, ticketWidth-24, (ticketHeight+qrSize)/2)
	scaleInto(canvas, slot, qrImg)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode ticket: %w", err)
	}
	return buf.Bytes(), nil
}

func ticketLines(data TicketData) []string {
	lines := []string{"Admit: " + data.BuyerName}
	if data.TierName != "" {
		lines = append(lines, "Tier: "+data.TierName)
	}
	if data.Venue != "" {
		lines = append(lines, "Venue: "+data.Venue)
	}
	lines = append(lines, "Issued: "+data.IssuedAt.UTC().Format("2006-01-02 15:04 MST"))
	return lines
}

func drawText(dst draw.Image, x, y int, col color.Color, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func scaleInto(dst draw.Image, r image.Rectangle, src image.Image) {
	sb := src.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			sx := sb.Min.X + (x-r.Min.X)*sb.Dx()/r.Dx()
			sy := sb.Min.Y + (y-r.Min.Y)*sb.Dy()/r.Dy()
			dst.Set(x, y, src.At(sx, sy))
		}
	}
}
