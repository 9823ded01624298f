package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

// Prompter reads answers line by line from an interactive input.
type Prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and echoing questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{sc: bufio.NewScanner(in), out: out}
}

// Line returns the next raw input line and false when the input is exhausted.
func (p *Prompter) Line() (string, bool) {
	if !p.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(label string) string {
	fmt.Fprintf(p.out, "Enter %s: ", label)
	s, _ := p.Line()
	return s
}

// Phone asks for the fields of a new phone.
func (p *Prompter) Phone() models.Phone {
	return models.Phone{
		Brand:        p.Ask("brand"),
		Model:        p.Ask("model"),
		PhoneNumber:  p.Ask("phone number"),
		SerialNumber: p.Ask("serial number"),
		Color:        p.Ask("color"),
		Memory:       p.Ask("memory"),
		CustomerName: p.Ask("customer name"),
		CustomerID:   p.Ask("customer id"),
		Description:  p.Ask("description"),
	}
}

// Accessory asks for the fields of a new accessory.
func (p *Prompter) Accessory() models.Accessory {
	return models.Accessory{
		Name:        p.Ask("name"),
		Category:    p.Ask("category"),
		Supplier:    p.Ask("supplier"),
		Description: p.Ask("description"),
		Notes:       p.Ask("notes"),
	}
}

// Category asks for a new accessory category.
func (p *Prompter) Category() models.AccessoryCategory {
	return models.AccessoryCategory{
		Name:          p.Ask("name"),
		LocalizedName: p.Ask("localized name"),
		Description:   p.Ask("description"),
	}
}

// Patch asks for each field in turn. Empty answers leave the field out of
// the patch.
func (p *Prompter) Patch(fields ...string) models.Patch {
	patch := make(models.Patch)
	for _, f := range fields {
		fmt.Fprintf(p.out, "New %s (empty to keep): ", f)
		v, _ := p.Line()
		if v != "" {
			patch[f] = v
		}
	}
	return patch
}

// Fields reads key=value lines until an empty line. Lines without '=' are
// ignored.
func (p *Prompter) Fields() map[string]any {
	fmt.Fprintln(p.out, "Enter sale fields as key=value, empty line to finish:")
	fields := make(map[string]any)
	for {
		line, ok := p.Line()
		if !ok || line == "" {
			return fields
		}
		k, v, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(k) == "" {
			continue
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
}
