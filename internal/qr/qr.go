package qr

import (
	"encoding/json"

	"github.com/skip2/go-qrcode"
)

// Payload is the JSON form embedded in a QR image. The token alone is
// also accepted by the scan endpoint.
type Payload struct {
	PassID   string `json:"passId"`
	UserID   string `json:"userId"`
	PassType string `json:"passType"`
	Token    string `json:"token"`
}

type Generator struct {
	size int
}

func NewGenerator() *Generator {
	return &Generator{size: 256}
}

// GeneratePNG renders the signed token as a QR PNG.
func (g *Generator) GeneratePNG(token string) ([]byte, error) {
	return qrcode.Encode(token, qrcode.Medium, g.size)
}

// GeneratePayloadPNG renders the full JSON payload as a QR PNG, for
// clients that want pass metadata without a round trip.
func (g *Generator) GeneratePayloadPNG(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, g.size)
}
