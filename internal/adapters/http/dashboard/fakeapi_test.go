package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"

	"github.com/okian/bankdash/internal/domain/model"
)

// fakeAPI is an in-memory stand-in for the transactions API.
type fakeAPI struct {
	mu       sync.Mutex
	hits     map[string]int
	failures map[string]failure
	records  []model.TransactionRecord
}

// failure is a canned error answer for one path.
type failure struct {
	status int
	detail string
}

func newFakeAPI() *fakeAPI {
	rec := func(id string, step int, typ string, amount float64, orig, dest string, fraud bool) model.TransactionRecord {
		return model.TransactionRecord{
			ID: model.RecordID(id), Step: step, Type: typ, Amount: amount,
			NameOrig: orig, NameDest: dest, OldBalanceOrg: amount * 2, NewBalanceOrig: amount,
			IsFraud: model.FraudFlag(fraud),
		}
	}
	return &fakeAPI{
		hits:     make(map[string]int),
		failures: make(map[string]failure),
		records: []model.TransactionRecord{
			rec("1", 1, "TRANSFER", 181, "C1", "C2", true),
			rec("2", 1, "TRANSFER", 250, "C3", "C4", false),
			rec("3", 2, "TRANSFER", 499.99, "C5", "C6", false),
			rec("4", 2, "TRANSFER", 1200, "C1", "C7", false),
			rec("5", 3, "PAYMENT", 300, "C1", "M1", false),
			rec("6", 3, "CASH_OUT", 150, "C8", "C9", true),
			rec("7", 4, "TRANSFER", 90, "C10", "C11", false),
			rec("8", 4, "TRANSFER", 100, "C12", "C13", false),
			rec("9", 5, "DEBIT", 420, "C14", "C1", false),
		},
	}
}

func (f *fakeAPI) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// failWith makes path answer status with detail until cleared with status 0.
func (f *fakeAPI) failWith(path string, status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.failures, path)
		return
	}
	f.failures[path] = failure{status: status, detail: detail}
}

func (f *fakeAPI) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/system/health", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/system/metadata", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]string{"version": "1.4.2"})
	})
	mux.HandleFunc("GET /api/stats/overview", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, model.Overview{TotalTransactions: int64(len(f.records)), FraudRate: 2.0 / 9, AvgAmount: 354.55, MostCommonType: "TRANSFER"})
	})
	mux.HandleFunc("GET /api/stats/amount-distribution", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, model.AmountDistribution{Bins: []string{"0-200", "200-500", "500+"}, Counts: []int64{4, 4, 1}})
	})
	mux.HandleFunc("GET /api/stats/by-type", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, []model.TypeStats{{Type: "TRANSFER", Count: 6, AvgAmount: 386.8, TotalAmount: 2320.99}, {Type: "PAYMENT", Count: 1, AvgAmount: 300, TotalAmount: 300}})
	})
	mux.HandleFunc("GET /api/stats/daily", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, []model.DailyStats{{Day: 1, Count: 2, AvgAmount: 215.5, TotalAmount: 431}, {Day: 2, Count: 2, AvgAmount: 850, TotalAmount: 1699.99}, {Day: 3, Count: 2, AvgAmount: 225, TotalAmount: 450}})
	})
	mux.HandleFunc("GET /api/fraud/summary", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, model.FraudSummary{TotalFrauds: 2, Flagged: 1, Precision: 1, Recall: 0.5})
	})
	mux.HandleFunc("GET /api/fraud/by-type", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, []model.FraudByType{{Type: "TRANSFER", TotalTransactions: 6, FraudCount: 1, FraudRate: 16.67}, {Type: "CASH_OUT", TotalTransactions: 1, FraudCount: 1, FraudRate: 100}})
	})
	mux.HandleFunc("POST /api/fraud/predict", func(w http.ResponseWriter, r *http.Request) {
		var req model.FraudPredictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
			reply(w, http.StatusUnprocessableEntity, map[string]string{"detail": "bad body"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"isFraud": 1, "probability": 0.873, "reasons": []string{"Balance drained", "Large transfer"}})
	})
	mux.HandleFunc("GET /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var isFraud *int
		if v := q.Get("isFraud"); v != "" {
			n, _ := strconv.Atoi(v)
			isFraud = &n
		}
		lo, _ := strconv.ParseFloat(q.Get("min_amount"), 64)
		hi, _ := strconv.ParseFloat(q.Get("max_amount"), 64)
		matched := f.filter(q.Get("type"), isFraud, lo, hi)
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		page, limit = max(page, 1), max(limit, 1)
		start := min((page-1)*limit, len(matched))
		end := min(start+limit, len(matched))
		reply(w, http.StatusOK, model.TransactionPage{Page: page, Limit: limit, Total: int64(len(matched)), Transactions: matched[start:end]})
	})
	mux.HandleFunc("GET /api/transactions/types", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, model.TypeList{Types: []string{"CASH_OUT", "DEBIT", "PAYMENT", "TRANSFER"}})
	})
	mux.HandleFunc("GET /api/transactions/recent", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("n"))
		n = min(max(n, 0), len(f.records))
		reply(w, http.StatusOK, model.TransactionList{Transactions: f.records[:n]})
	})
	mux.HandleFunc("POST /api/transactions/search", func(w http.ResponseWriter, r *http.Request) {
		var body model.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			reply(w, http.StatusUnprocessableEntity, map[string]string{"detail": "bad body"})
			return
		}
		var lo, hi float64
		if len(body.AmountRange) == 2 {
			lo, hi = body.AmountRange[0], body.AmountRange[1]
		}
		matched := f.filter(body.Type, body.IsFraud, lo, hi)
		reply(w, http.StatusOK, model.SearchResult{Count: int64(len(matched)), Transactions: matched})
	})
	mux.HandleFunc("GET /api/transactions/by-customer/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, model.TransactionList{Transactions: f.match(func(t model.TransactionRecord) bool { return t.NameOrig == r.PathValue("id") })})
	})
	mux.HandleFunc("GET /api/transactions/to-customer/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, model.TransactionList{Transactions: f.match(func(t model.TransactionRecord) bool { return t.NameDest == r.PathValue("id") })})
	})
	mux.HandleFunc("GET /api/customers", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, model.CustomerPage{Page: 1, Limit: 25, Total: 3, Customers: []string{"C1", "C3", "C5"}})
	})
	mux.HandleFunc("GET /api/customers/top", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, []model.TopCustomer{{CustomerID: "C1", TransactionCount: 3, TotalAmount: 1681, AvgAmount: 560.33, FraudCount: 1, Fraudulent: true}})
	})
	mux.HandleFunc("GET /api/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "C1" {
			reply(w, http.StatusNotFound, map[string]string{"detail": "Customer not found"})
			return
		}
		reply(w, http.StatusOK, model.CustomerProfile{TransactionsCount: 3, TotalAmount: 1681, AvgAmount: 560.33, Fraudulent: true, FraudCount: 1})
	})

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		fail, failing := f.failures[r.URL.Path]
		f.mu.Unlock()
		if failing {
			reply(w, fail.status, map[string]string{"detail": fail.detail})
			return
		}
		mux.ServeHTTP(w, r)
	}))
}

func (f *fakeAPI) filter(typ string, isFraud *int, lo, hi float64) []model.TransactionRecord {
	return f.match(func(t model.TransactionRecord) bool {
		switch {
		case typ != "" && t.Type != typ:
			return false
		case isFraud != nil && bool(t.IsFraud) != (*isFraud == 1):
			return false
		case lo > 0 && t.Amount < lo:
			return false
		case hi > 0 && t.Amount > hi:
			return false
		}
		return true
	})
}

func (f *fakeAPI) match(keep func(model.TransactionRecord) bool) []model.TransactionRecord {
	out := []model.TransactionRecord{}
	for _, t := range f.records {
		if keep(t) {
			out = append(out, t)
		}
	}
	return slices.Clip(out)
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// hangingAPI accepts requests and never answers them until released.
type hangingAPI struct {
	srv     *httptest.Server
	release chan struct{}

	mu   sync.Mutex
	hits int
}

func newHangingAPI() *hangingAPI {
	h := &hangingAPI{release: make(chan struct{})}
	h.srv = httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.hits++
		h.mu.Unlock()
		select {
		case <-r.Context().Done():
		case <-h.release:
		}
	}))
	return h
}

func (h *hangingAPI) requests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits
}

func (h *hangingAPI) Close() {
	close(h.release)
	h.srv.Close()
}
