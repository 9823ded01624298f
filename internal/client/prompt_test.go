package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

func TestPrompter_Phone(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("Apple\niPhone 16\n 050 \nSN9\n\n128GB\nMona\n\nnew\n"), &out)

	got := p.Phone()

	assert.Equal(t, models.Phone{
		Brand:        "Apple",
		Model:        "iPhone 16",
		PhoneNumber:  "050",
		SerialNumber: "SN9",
		Memory:       "128GB",
		CustomerName: "Mona",
		Description:  "new",
	}, got)
	assert.Contains(t, out.String(), "Enter brand: ")
	assert.Contains(t, out.String(), "Enter serial number: ")
}

func TestPrompter_Patch(t *testing.T) {
	p := NewPrompter(strings.NewReader("\nCharger 20W\n"), &bytes.Buffer{})
	assert.Equal(t, models.Patch{"category": "Charger 20W"}, p.Patch("name", "category"))
}

func TestPrompter_PatchAtEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{})
	assert.Empty(t, p.Patch("name"))
}

func TestPrompter_Fields(t *testing.T) {
	p := NewPrompter(strings.NewReader("price = 99\nnote\n=skip\npaid=yes\n\nignored=1\n"), &bytes.Buffer{})
	assert.Equal(t, map[string]any{"price": "99", "paid": "yes"}, p.Fields())

	line, ok := p.Line()
	assert.True(t, ok)
	assert.Equal(t, "ignored=1", line)
}
