package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/shopspring/decimal"

	"wealth/internal/core"
	"wealth/web"
)

// TemplateType selects the email body layout.
type TemplateType string

const (
	TemplateBudgetAlert   TemplateType = "budget-alert"
	TemplateMonthlyReport TemplateType = "monthly-report"
	templateFallback      TemplateType = "fallback"
)

// Email is the input to Render. Data must match the template: BudgetAlertData
// for budget-alert, MonthlyReportData for monthly-report.
type Email struct {
	Type     TemplateType
	UserName string
	Data     any
}

type BudgetAlertData struct {
	AccountName    string
	Month          string
	PercentageUsed float64
	BudgetAmount   decimal.Decimal
	TotalExpenses  decimal.Decimal
	Remaining      decimal.Decimal
}

type MonthlyReportData struct {
	Overview core.MonthOverview
	Insights []string
}

// Renderer turns an Email into HTML using the embedded templates.
type Renderer struct {
	templates map[TemplateType]*template.Template
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + core.FormatAmount(d) },
	"pct":   func(f float64) string { return fmt.Sprintf("%.1f", f) },
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return newRenderer(web.TemplatesFS)
}

func newRenderer(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{templates: make(map[TemplateType]*template.Template)}
	for _, t := range []TemplateType{TemplateBudgetAlert, TemplateMonthlyReport, templateFallback} {
		tmpl, err := template.New(string(t)).Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/"+string(t)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", t, err)
		}
		r.templates[t] = tmpl
	}
	return r, nil
}

// Render executes the template for e.Type. Unknown types get the generic
// notification body.
func (r *Renderer) Render(e Email) (string, error) {
	tmpl, ok := r.templates[e.Type]
	if !ok {
		tmpl = r.templates[templateFallback]
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", e); err != nil {
		return "", fmt.Errorf("render %s template: %w", e.Type, err)
	}
	return buf.String(), nil
}
