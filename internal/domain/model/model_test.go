package model_test

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/okian/bankdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTransactionRecordDecoding(t *testing.T) {
	Convey("Given transaction JSON from the API", t, func() {
		Convey("When isFraud is a 0/1 integer and id a number", func() {
			var rec model.TransactionRecord
			err := json.Unmarshal([]byte(`{"id": 42, "step": 1, "type": "TRANSFER", "amount": 181.0,
				"nameOrig": "C1305486145", "nameDest": "C553264065", "isFraud": 1, "isFlaggedFraud": 0}`), &rec)

			Convey("Then it should decode into typed fields", func() {
				So(err, ShouldBeNil)
				So(string(rec.ID), ShouldEqual, "42")
				So(bool(rec.IsFraud), ShouldBeTrue)
				So(bool(rec.IsFlaggedFraud), ShouldBeFalse)
				So(rec.IsFraud.FraudLabel(), ShouldEqual, "1")
				So(model.Validate(&rec), ShouldBeNil)
			})
		})

		Convey("When isFraud is a boolean and id a string", func() {
			var rec model.TransactionRecord
			err := json.Unmarshal([]byte(`{"id": "tx-1", "type": "PAYMENT", "amount": 9.5, "isFraud": false}`), &rec)

			Convey("Then it should decode as well", func() {
				So(err, ShouldBeNil)
				So(string(rec.ID), ShouldEqual, "tx-1")
				So(bool(rec.IsFraud), ShouldBeFalse)
			})
		})

		Convey("When isFraud has an unexpected value", func() {
			var rec model.TransactionRecord
			err := json.Unmarshal([]byte(`{"type": "PAYMENT", "isFraud": "maybe"}`), &rec)

			Convey("Then decoding should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given decoded responses", t, func() {
		Convey("When a transaction has no type", func() {
			page := model.TransactionPage{Total: 1, Transactions: []model.TransactionRecord{{Amount: 3}}}
			err := model.Validate(&page)

			Convey("Then it should be a schema mismatch", func() {
				So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Type")
			})
		})

		Convey("When a probability is out of range", func() {
			resp := model.FraudPredictionResponse{Probability: 1.7}
			So(errors.Is(model.Validate(&resp), model.ErrSchema), ShouldBeTrue)
		})

		Convey("When a distribution has mismatched bins and counts", func() {
			dist := model.AmountDistribution{Bins: []string{"0-100", "100-500"}, Counts: []int64{3}}
			err := model.Validate(&dist)

			Convey("Then Check should reject it", func() {
				So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "2 bins but 1 counts")
			})
		})

		Convey("When a slice response has an invalid element", func() {
			rows := []model.TypeStats{{Type: "PAYMENT", Count: 2}, {Type: "", Count: 1}}
			So(errors.Is(model.Validate(&rows), model.ErrSchema), ShouldBeTrue)
		})

		Convey("When responses are valid", func() {
			rows := []model.FraudByType{{Type: "TRANSFER", TotalTransactions: 10, FraudCount: 1, FraudRate: 10}}
			summary := model.FraudSummary{TotalFrauds: 8213, Flagged: 16, Precision: 1, Recall: 0.0019}
			So(model.Validate(&rows), ShouldBeNil)
			So(model.Validate(&summary), ShouldBeNil)
		})
	})
}

func TestParseFilter(t *testing.T) {
	Convey("Given submitted filter forms", t, func() {
		Convey("When the transfer scenario is submitted", func() {
			f, err := model.ParseFilter(url.Values{
				"type":       {"transfer"},
				"fraud":      {"legit"},
				"min_amount": {"100"},
				"max_amount": {"500"},
				"page":       {"2"},
				"limit":      {"25"},
			})

			Convey("Then it should map to API query parameters", func() {
				So(err, ShouldBeNil)
				q := f.Query()
				So(q.Get("type"), ShouldEqual, "TRANSFER")
				So(q.Get("isFraud"), ShouldEqual, "0")
				So(q.Get("min_amount"), ShouldEqual, "100")
				So(q.Get("max_amount"), ShouldEqual, "500")
				So(q.Get("page"), ShouldEqual, "2")
				So(q.Get("limit"), ShouldEqual, "25")
			})

			Convey("And the form values should round-trip", func() {
				again, err := model.ParseFilter(f.FormValues())
				So(err, ShouldBeNil)
				So(again.Query(), ShouldResemble, f.Query())
			})
		})

		Convey("When nothing is set", func() {
			f, err := model.ParseFilter(url.Values{})

			Convey("Then only paging should be sent", func() {
				So(err, ShouldBeNil)
				So(f.Query(), ShouldResemble, url.Values{"page": {"1"}, "limit": {"10"}})
				body := f.SearchBody()
				So(body.Type, ShouldBeEmpty)
				So(body.IsFraud, ShouldBeNil)
				So(body.AmountRange, ShouldBeNil)
			})
		})

		Convey("When only a minimum amount is set for a search", func() {
			f, err := model.ParseFilter(url.Values{"min_amount": {"250.50"}, "fraud": {"fraud"}})

			Convey("Then the upper bound should be open", func() {
				So(err, ShouldBeNil)
				body := f.SearchBody()
				So(*body.IsFraud, ShouldEqual, 1)
				So(body.AmountRange, ShouldResemble, []float64{250.5, 999999999})
			})
		})

		Convey("When the amounts are inverted", func() {
			_, err := model.ParseFilter(url.Values{"min_amount": {"500"}, "max_amount": {"100"}})
			So(errors.Is(err, model.ErrInvalidFilter), ShouldBeTrue)
		})

		Convey("When inputs are malformed", func() {
			cases := []url.Values{
				{"min_amount": {"abc"}},
				{"max_amount": {"-1"}},
				{"page": {"0"}},
				{"limit": {"7"}},
				{"fraud": {"sometimes"}},
				{"type": {"PAY MENT"}},
			}
			for _, c := range cases {
				_, err := model.ParseFilter(c)
				So(errors.Is(err, model.ErrInvalidFilter), ShouldBeTrue)
			}
		})
	})
}
