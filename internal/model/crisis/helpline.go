package crisis

import "strings"

// Helpline is one 24/7 support line shown when the crisis alert is open.
type Helpline struct {
	Region string `json:"region"`
	Number string `json:"number"`
	Name   string `json:"name"`
}

// Dial returns the number reduced to digits and '+', suitable for tel: links.
func (h Helpline) Dial() string {
	var b strings.Builder
	for _, r := range h.Number {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var directory = []Helpline{
	{Region: "España", Number: "024", Name: "Línea de Atención a la Conducta Suicida"},
	{Region: "México", Number: "800-290-0024", Name: "SAPTEL"},
	{Region: "Argentina", Number: "(011) 5275-1135", Name: "Centro de Asistencia al Suicida"},
	{Region: "Chile", Number: "600-360-7777", Name: "Fono Salud"},
	{Region: "Colombia", Number: "106", Name: "Línea 106"},
	{Region: "Perú", Number: "(01) 498-2711", Name: "Teléfono de la Esperanza"},
}

// Directory returns a copy of the helpline table.
func Directory() []Helpline {
	return append([]Helpline(nil), directory...)
}
