package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/domain/model"
	"github.com/okian/bankdash/internal/view"
)

type predictionForm struct {
	Types          []option
	Amount         string
	OldBalanceOrg  string
	NewBalanceOrig string
}

func newPredictionForm(p model.FraudPredictionRequest) predictionForm {
	return predictionForm{
		Types:          options(model.TransactionTypes, nil, p.Type),
		Amount:         strconv.FormatFloat(p.Amount, 'f', -1, 64),
		OldBalanceOrg:  strconv.FormatFloat(p.OldBalanceOrg, 'f', -1, 64),
		NewBalanceOrig: strconv.FormatFloat(p.NewBalanceOrig, 'f', -1, 64),
	}
}

// parsePrediction reads the prediction form. Amounts must be non-negative
// numbers.
func parsePrediction(v url.Values) (model.FraudPredictionRequest, error) {
	const op = "dashboard.parse_prediction"
	req := model.FraudPredictionRequest{Type: strings.ToUpper(strings.TrimSpace(v.Get("type")))}
	fields := []struct {
		key string
		dst *float64
	}{
		{"amount", &req.Amount},
		{"oldbalanceOrg", &req.OldBalanceOrg},
		{"newbalanceOrig", &req.NewBalanceOrig},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(strings.TrimSpace(v.Get(f.key)))
		if err != nil {
			return req, apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("%s is not a number", f.key))
		}
		if d.IsNegative() {
			return req, apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("%s must not be negative", f.key))
		}
		*f.dst = d.InexactFloat64()
	}
	if err := model.Validate(&req); err != nil {
		return req, apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("type must be one of %s", strings.Join(model.TransactionTypes, ", ")))
	}
	return req, nil
}

func (s *Server) handleFraud(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	s.fraudPage(w, r, newPredictionForm(sess.Prediction()), nil)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)

	if err := r.ParseForm(); err != nil {
		sec := s.skipped(ctx, pageFraud, "prediction", "Prediction", apierr.WrapKind("dashboard.predict", apierr.ErrInvalidRequest, err))
		s.fraudPage(w, r, newPredictionForm(sess.Prediction()), &sec)
		return
	}

	req, err := parsePrediction(r.PostForm)
	if err != nil {
		form := predictionForm{
			Types:          options(model.TransactionTypes, nil, req.Type),
			Amount:         r.PostForm.Get("amount"),
			OldBalanceOrg:  r.PostForm.Get("oldbalanceOrg"),
			NewBalanceOrig: r.PostForm.Get("newbalanceOrig"),
		}
		sec := s.skipped(ctx, pageFraud, "prediction", "Prediction", err)
		s.fraudPage(w, r, form, &sec)
		return
	}
	sess.SetPrediction(req)

	sec := s.section(ctx, pageFraud, "prediction", "Prediction", func(ctx context.Context, sec *view.Section) error {
		resp, err := c.PredictFraud(ctx, req)
		if err != nil {
			return err
		}
		verdict := "Legitimate"
		sec.Alert = &view.Banner{Kind: view.BannerSuccess, Title: "Transaction looks legitimate"}
		if resp.IsFraud {
			verdict = "Fraud"
			sec.Alert = &view.Banner{Kind: view.BannerError, Title: "Fraud detected"}
		}
		sec.KPIs = []view.KPI{
			{Label: "Fraud probability", Value: view.Percent(resp.Probability)},
			{Label: "Verdict", Value: verdict},
			{Label: "Rules triggered", Value: strconv.Itoa(len(resp.Reasons))},
		}
		sec.Items = resp.Reasons
		if len(resp.Reasons) == 0 {
			sec.Note = "No rules triggered."
		}
		sec.Code = prettyJSON(resp.Raw)
		return nil
	})
	s.fraudPage(w, r, newPredictionForm(req), &sec)
}

const tableFraudByType = "fraud-by-type"

// fraudPage renders the fraud page. prediction, when set, is placed between
// the summary and the per-type breakdown.
func (s *Server) fraudPage(w http.ResponseWriter, r *http.Request, form predictionForm, prediction *view.Section) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)

	data := pageData{Header: s.apiHeader(ctx, c), Form: form}
	data.Sections = append(data.Sections, s.section(ctx, pageFraud, "summary", "Detection summary", func(ctx context.Context, sec *view.Section) error {
		sum, err := c.FraudSummary(ctx)
		if err != nil {
			return err
		}
		sec.KPIs = []view.KPI{
			{Label: "Total frauds", Value: view.Count(sum.TotalFrauds)},
			{Label: "Flagged by rules", Value: view.Count(sum.Flagged)},
			{Label: "Precision", Value: view.Percent(sum.Precision)},
			{Label: "Recall", Value: view.Percent(sum.Recall)},
		}
		return nil
	}))
	if prediction != nil {
		data.Sections = append(data.Sections, *prediction)
	}
	data.Sections = append(data.Sections, s.section(ctx, pageFraud, "by-type", "Fraud by type", func(ctx context.Context, sec *view.Section) error {
		rows, err := c.FraudByType(ctx)
		if err != nil {
			return err
		}
		labels := make([]string, len(rows))
		rates := make([]float64, len(rows))
		for i, r := range rows {
			labels[i], rates[i] = r.Type, r.FraudRate
		}
		sec.Charts = append(sec.Charts, view.BarChart("Fraud rate (%) per type", labels, rates))
		keep(sess, sec, view.FraudByTypeTable(tableFraudByType, rows))
		return nil
	}, tableFraudByType))
	s.render(w, r, pageFraud, "Fraud detection", data)
}

// prettyJSON indents raw for display, or returns it unchanged when it is not
// JSON.
func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
