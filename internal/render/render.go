// Package render substitutes computed route values into a user-configured
// result template.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"ratnav/internal/route"
)

// Recognized placeholder tokens:
//
//	{jumps}     jump count, plain integer
//	{distance}  total distance, one decimal place
//	{route}     route class label
//	{system}    destination name (alias of {to})
//	{from}      origin name
//	{to}        destination name
//
// Unrecognized tokens pass through verbatim so user templates stay
// compatible with older template sets.

// Render fills template with values from the plan. Substitution is a
// single pass: an inserted value is never re-scanned for placeholders.
func Render(template string, p route.Plan) string {
	r := strings.NewReplacer(
		"{jumps}", strconv.Itoa(p.JumpCount),
		"{distance}", fmt.Sprintf("%.1f", p.TotalDistanceLY),
		"{route}", p.Class.String(),
		"{system}", p.Destination,
		"{from}", p.Origin,
		"{to}", p.Destination,
	)
	return r.Replace(template)
}
