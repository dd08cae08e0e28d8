// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package explain

import (
	"strings"

	"shapecount/internal/models"
)

// Display templates. The binomial argument is padded with spaces so that
// counts of ten or more still render as a single LaTeX group.
const (
	answerTemplate   = "คำตอบ คือ {{answer}} รูป<br><br>"
	headingText      = "พิจารณาเส้นแนวนอนจากเส้นล่างสุดขึ้นไปยังเส้นบนสุด<br><br>"
	triangleTemplate = `เมื่อเลือกเส้นแนวนอนเส้นที่ {{i}} และเลือกเส้นด้านประกอบมุมยอด 2 เส้น จากทั้งหมด {{x}} เส้น สร้างได้ \( \Large \binom{ {{x}} }{2} \) = {{y}}  รูป<br><br>`
	rectangleLine    = `เมื่อเลือกเส้นแนวนอนเส้นที่ {{i}} สร้างได้ <br> {{subtemplate}} = {{sum}} รูป`
	rectangleTerm    = `\( \Large \binom{ {{x}} }{2} \) `
	termSeparator    = "+ "
	duplicateSuffix  = " (ไม่นับรูปซ้ำ)<br><br>"
	lineBreak        = "<br><br>"
)

// Failure messages shown when an upload cannot be solved.
const (
	FailureResult  = "ไม่สามารถหาคำตอบได้"
	FailureExplain = "ขออภัย ปัญหานี้อาจอยู่นอกขอบเขตที่เราแก้ได้"
)

// Step is one line of an explanation: the horizontal line it starts from
// (1-based), the line counts whose pairs it chooses from, and the number of
// shapes that step contributes.
type Step struct {
	Index int
	Terms []int
	Sum   int
}

// Explanation is the derived walkthrough for one classified image.
type Explanation struct {
	Kind   models.ImageType
	Answer *float64 // nil when the response carried no answer
	Steps  []Step
}

// Choose2 returns C(x, 2), the number of ways to pick two of x lines.
func Choose2(x int) int {
	return x * (x - 1) / 2
}

// Triangle derives one step per horizontal line: with x slanted lines
// crossing line i, there are C(x, 2) triangles standing on it.
func Triangle(counts []int) []Step {
	steps := make([]Step, 0, len(counts))
	for idx, x := range counts {
		steps = append(steps, Step{
			Index: idx + 1,
			Terms: []int{x},
			Sum:   Choose2(x),
		})
	}
	return steps
}

// Rectangle derives one step per horizontal line i, pairing it with every
// line above it. A pair (i, j) shares min(a[i], a[j]) vertical lines, giving
// C(min, 2) rectangles. Pairs are only counted from their lower line.
func Rectangle(counts []int) []Step {
	steps := make([]Step, 0, len(counts))
	for i := range counts {
		step := Step{Index: i + 1}
		for j := i + 1; j < len(counts); j++ {
			x := min(counts[i], counts[j])
			step.Terms = append(step.Terms, x)
			step.Sum += Choose2(x)
		}
		steps = append(steps, step)
	}
	return steps
}

// TriangleTotal is the total triangle count for the given line counts.
func TriangleTotal(counts []int) int {
	return total(Triangle(counts))
}

// RectangleTotal is the total rectangle count for the given line counts.
func RectangleTotal(counts []int) int {
	return total(Rectangle(counts))
}

func total(steps []Step) int {
	var n int
	for _, s := range steps {
		n += s.Sum
	}
	return n
}

// Derive builds the explanation for a recognized response. Unknown image
// types produce an explanation with no steps.
func Derive(resp *models.UploadResponse) Explanation {
	e := Explanation{Kind: resp.Kind(), Answer: resp.Answer}
	switch e.Kind {
	case models.ImageTypeTriangle:
		e.Steps = Triangle(resp.ArrInfo)
	case models.ImageTypeRectangle:
		e.Steps = Rectangle(resp.ArrInfo)
	}
	return e
}

// Total sums the contributions of every step.
func (e Explanation) Total() int {
	return total(e.Steps)
}

// AnswerHTML renders the answer line. A missing answer renders as "".
func (e Explanation) AnswerHTML() string {
	var answer any
	if e.Answer != nil {
		answer = *e.Answer
	}
	return Render(answerTemplate, map[string]any{"answer": answer})
}

// HTML renders the explanation body. It is empty for unknown image types.
func (e Explanation) HTML() string {
	var b strings.Builder
	switch e.Kind {
	case models.ImageTypeTriangle:
		b.WriteString(headingText)
		for _, s := range e.Steps {
			b.WriteString(Render(triangleTemplate, map[string]any{
				"i": s.Index,
				"x": s.Terms[0],
				"y": s.Sum,
			}))
		}
	case models.ImageTypeRectangle:
		b.WriteString(headingText)
		for n, s := range e.Steps {
			terms := make([]string, len(s.Terms))
			for k, x := range s.Terms {
				terms[k] = Render(rectangleTerm, map[string]any{"x": x})
			}
			b.WriteString(Render(rectangleLine, map[string]any{
				"i":           s.Index,
				"subtemplate": strings.Join(terms, termSeparator),
				"sum":         s.Sum,
			}))
			if n != 0 {
				b.WriteString(duplicateSuffix)
			} else {
				b.WriteString(lineBreak)
			}
		}
	}
	return b.String()
}
