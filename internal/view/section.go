package view

import (
	"errors"
	"fmt"

	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/domain/model"
)

// KPI is a single headline number.
type KPI struct {
	Label string
	Value string
	Hint  string
}

// BannerKind styles a banner.
type BannerKind string

const (
	BannerError   BannerKind = "error"
	BannerWarning BannerKind = "warning"
	BannerInfo    BannerKind = "info"
	BannerSuccess BannerKind = "success"
)

// Banner is a message box shown in place of, or above, section content.
type Banner struct {
	Kind   BannerKind
	Title  string
	Detail string
}

// BannerFor describes err to the user. Each error class gets its own wording.
func BannerFor(err error) *Banner {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrInvalidFilter) {
		return &Banner{Kind: BannerWarning, Title: "Invalid input", Detail: err.Error()}
	}
	switch apierr.Classify(err) {
	case apierr.KindUnreachable:
		return &Banner{
			Kind:   BannerError,
			Title:  "API unreachable",
			Detail: "The transactions API did not answer in time or refused the connection. Check that it is running and that the base URL in Settings is correct.",
		}
	case apierr.KindStatus:
		var se *apierr.StatusError
		errors.As(err, &se)
		return &Banner{Kind: BannerError, Title: fmt.Sprintf("API returned %d", se.StatusCode), Detail: se.Message}
	case apierr.KindMalformed:
		return &Banner{
			Kind:   BannerError,
			Title:  "Could not parse the API response",
			Detail: "The API answered with data in an unexpected format.",
		}
	case apierr.KindInvalidInput:
		return &Banner{Kind: BannerWarning, Title: "Invalid input", Detail: err.Error()}
	default:
		return &Banner{Kind: BannerError, Title: "Something went wrong", Detail: "This section could not be rendered."}
	}
}

// Section is one independently fetched part of a page.
type Section struct {
	ID     string
	Title  string
	Banner *Banner
	Note   string

	KPIs   []KPI
	Tables []Table
	Charts []Chart
	Items  []string
	// Code is preformatted text, such as pretty-printed JSON.
	Code string
	// Alert is a highlighted verdict line.
	Alert *Banner
	// Exports are links to CSV downloads of the section's tables.
	Exports []Export
}

// Export is a download link for a stored table.
type Export struct {
	Label string
	URL   string
	Rows  int
}

// Failed reports whether the section shows a banner instead of content.
func (s Section) Failed() bool { return s.Banner != nil }
