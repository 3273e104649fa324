package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// FormParticipant is one row of the participants table.
type FormParticipant struct {
	Name        string
	Gender      string
	DateOfBirth string
	MobileNo    string
}

// RegistrationForm carries everything printed on a group registration form.
type RegistrationForm struct {
	Organization    string
	EventName       string
	GroupNumber     string
	LeaderName      string
	Church          string
	ChurchPlace     string
	Language        string
	Zone            string
	ContactNumber   string
	AlternateNumber string
	Email           string
	SubmittedAt     time.Time
	Participants    []FormParticipant
	Instructions    []string
}

// DefaultInstructions are printed when a form carries none of its own.
var DefaultInstructions = []string{
	"Print this form and bring it on the day of the quiz.",
	"The form must be signed by the group leader and the pastor.",
	"Affix the church seal in the space provided.",
	"Every participant must carry a photo identity card.",
	"Report at the venue at least 30 minutes before the start.",
	"Changes to participants are not allowed after registration.",
	"Quote the group number in all correspondence.",
	"The decision of the quiz committee is final.",
}

const (
	pageWidth    = 210.0
	marginX      = 12.0
	contentWidth = pageWidth - 2*marginX
	lineHeight   = 6.0
)

// RenderRegistrationForm lays out the printable A4 form for one group and
// returns the PDF bytes. With SubmittedAt set the output depends only on f.
func RenderRegistrationForm(f RegistrationForm) ([]byte, error) {
	return renderRegistrationForm(f, true)
}

// renderRegistrationForm lets tests switch off stream compression so the
// page text stays readable in the output.
func renderRegistrationForm(f RegistrationForm, compress bool) ([]byte, error) {
	if f.GroupNumber == "" {
		return nil, fmt.Errorf("registration form requires a group number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginX, 12, marginX)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetCompression(compress)
	pdf.SetTitle(formTitle(f), true)
	pdf.SetCreator("church-events-api", true)
	pdf.SetCatalogSort(true)
	if !f.SubmittedAt.IsZero() {
		pdf.SetCreationDate(f.SubmittedAt)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(110, 110, 110)
		footer := "Group #" + f.GroupNumber
		if !f.SubmittedAt.IsZero() {
			footer += "  |  Submitted " + f.SubmittedAt.UTC().Format("02 Jan 2006 15:04 MST")
		}
		pdf.CellFormat(contentWidth/2, 5, tr(footer), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth/2, 5, "Page "+strconv.Itoa(pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	drawTitleBlock(pdf, tr, f)
	drawHeaderFields(pdf, tr, f)
	drawParticipants(pdf, tr, f.Participants)
	drawDeclarations(pdf, tr, f)
	drawInstructions(pdf, tr, f.Instructions)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render registration form: %w", err)
	}
	return buf.Bytes(), nil
}

func formTitle(f RegistrationForm) string {
	event := f.EventName
	if event == "" {
		event = "Bible Quiz"
	}
	return event + " Registration - Group " + f.GroupNumber
}

func drawTitleBlock(pdf *gofpdf.Fpdf, tr func(string) string, f RegistrationForm) {
	top := pdf.GetY()
	if f.Organization != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentWidth, 6, tr(strings.ToUpper(f.Organization)), "", 1, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 16)
	event := f.EventName
	if event == "" {
		event = "Bible Quiz"
	}
	pdf.CellFormat(contentWidth, 9, tr(strings.ToUpper(event)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentWidth, 6, "Group Registration Form", "", 1, "C", false, 0, "")

	// group number badge in the top right corner
	boxW, boxH := 34.0, 16.0
	x := marginX + contentWidth - boxW
	pdf.SetDrawColor(40, 40, 40)
	pdf.SetFillColor(235, 240, 250)
	pdf.Rect(x, top, boxW, boxH, "DF")
	pdf.SetXY(x, top+1.5)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(boxW, 4, "GROUP NO.", "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(boxW, 8, tr(f.GroupNumber), "", 0, "C", false, 0, "")

	y := maxFloat(pdf.GetY(), top+boxH) + 3
	pdf.SetLineWidth(0.6)
	pdf.Line(marginX, y, marginX+contentWidth, y)
	pdf.SetLineWidth(0.2)
	pdf.SetXY(marginX, y+3)
}

func drawHeaderFields(pdf *gofpdf.Fpdf, tr func(string) string, f RegistrationForm) {
	alt := f.AlternateNumber
	if alt == "" {
		alt = "-"
	}
	left := [][2]string{
		{"Group Leader", f.LeaderName},
		{"Church", f.Church},
		{"Place", f.ChurchPlace},
		{"Zone", f.Zone},
	}
	right := [][2]string{
		{"Language", f.Language},
		{"Contact No.", f.ContactNumber},
		{"Alternate No.", alt},
		{"Email", f.Email},
	}

	colW := contentWidth / 2
	labelW := 27.0
	for i := range left {
		y := pdf.GetY()
		for col, pair := range [][2]string{left[i], right[i]} {
			x := marginX + float64(col)*colW
			pdf.SetXY(x, y)
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(labelW, lineHeight, pair[0]+":", "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			pdf.CellFormat(colW-labelW-3, lineHeight, tr(fit(pdf, pair[1], colW-labelW-4)), "B", 0, "L", false, 0, "")
		}
		pdf.SetXY(marginX, y+lineHeight+1.5)
	}
	pdf.Ln(3)
}

func drawParticipants(pdf *gofpdf.Fpdf, tr func(string) string, participants []FormParticipant) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentWidth, 7, "Participants", "", 1, "L", false, 0, "")

	widths := []float64{12, 72, 24, 34, contentWidth - 142}
	headers := []string{"No.", "Name", "Gender", "Date of Birth", "Mobile"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(225, 225, 225)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, p := range participants {
		cells := []string{strconv.Itoa(i + 1), p.Name, p.Gender, p.DateOfBirth, p.MobileNo}
		for j, v := range cells {
			align := "L"
			if j == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[j], 7, tr(fit(pdf, v, widths[j]-2)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func drawDeclarations(pdf *gofpdf.Fpdf, tr func(string) string, f RegistrationForm) {
	gap := 6.0
	blockW := (contentWidth - gap) / 2
	blockH := 50.0
	top := pdf.GetY()

	church := f.Church
	if church == "" {
		church = "our church"
	}
	blocks := []struct {
		title string
		text  string
		sign  string
	}{
		{
			title: "Declaration by Group Leader",
			text:  "I confirm that the details given above are true and that the participants listed are members of " + church + ".",
			sign:  "Signature of Group Leader",
		},
		{
			title: "Declaration by Pastor",
			text:  "I recommend this group for participation and confirm that the participants belong to this church.",
			sign:  "Signature of Pastor",
		},
	}

	for i, b := range blocks {
		x := marginX + float64(i)*(blockW+gap)
		pdf.Rect(x, top, blockW, blockH, "D")

		pdf.SetXY(x+2, top+2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(blockW-4, 5, b.title, "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(blockW-4, 4, tr(b.text), "", "L", false)

		lineY := top + blockH - 9
		pdf.Line(x+4, lineY, x+blockW/2-2, lineY)
		pdf.SetXY(x+4, lineY+0.5)
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(blockW/2-6, 4, b.sign, "", 0, "L", false, 0, "")
		pdf.Line(x+blockW/2+2, lineY, x+blockW-4, lineY)
		pdf.SetXY(x+blockW/2+2, lineY+0.5)
		pdf.CellFormat(blockW/2-6, 4, "Date", "", 0, "L", false, 0, "")

		if i == 1 {
			// seal placeholder sits in the pastor's block, right of the text
			sealW, sealH := 30.0, 18.0
			sx := x + blockW - sealW - 4
			sy := top + 20
			pdf.SetDashPattern([]float64{1.5, 1}, 0)
			pdf.Rect(sx, sy, sealW, sealH, "D")
			pdf.SetDashPattern([]float64{}, 0)
			pdf.SetXY(sx, sy+sealH/2-2)
			pdf.SetFont("Helvetica", "I", 7)
			pdf.SetTextColor(120, 120, 120)
			pdf.CellFormat(sealW, 4, "Church Seal", "", 0, "C", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
	}

	pdf.SetXY(marginX, top+blockH+5)
}

func drawInstructions(pdf *gofpdf.Fpdf, tr func(string) string, instructions []string) {
	if len(instructions) == 0 {
		instructions = DefaultInstructions
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentWidth, 7, "Instructions", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)

	gap := 6.0
	colW := (contentWidth - gap) / 2
	half := (len(instructions) + 1) / 2
	top := pdf.GetY()
	bottom := top

	for col := 0; col < 2; col++ {
		start, end := col*half, (col+1)*half
		if end > len(instructions) {
			end = len(instructions)
		}
		x := marginX + float64(col)*(colW+gap)
		pdf.SetXY(x, top)
		for i := start; i < end; i++ {
			pdf.SetX(x)
			pdf.MultiCell(colW, 4, tr(strconv.Itoa(i+1)+". "+instructions[i]), "", "L", false)
			pdf.Ln(1)
		}
		bottom = maxFloat(bottom, pdf.GetY())
	}
	pdf.SetXY(marginX, bottom)
}

// fit trims s with an ellipsis so it fits into width at the current font.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
