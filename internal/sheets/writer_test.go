package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/feedgen/internal/common"
	"github.com/Veraticus/feedgen/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func testRecords(n int) []model.Record {
	records := make([]model.Record, n)
	for i := range records {
		records[i] = model.Record{
			CustomerName:  "Customer",
			FeedbackID:    1000 + i,
			Product:       "Widget",
			FeedbackText:  "=SUM(A1:A2) is not a formula here",
			Sentiment:     model.SentimentNeutral,
			Rating:        3,
			PurchaseDate:  time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
			Location:      "Springfield",
			CustomerEmail: "c@example.com",
			OrderID:       100000 + i,
		}
	}
	return records
}

func TestPrepareRecordData(t *testing.T) {
	values := prepareRecordData(testRecords(2))

	require.Len(t, values, 3)
	require.Len(t, values[0], len(model.Header))
	assert.Equal(t, "CustomerName", values[0][0])
	assert.Equal(t, "OrderID", values[0][9])
	assert.Equal(t, 1001, values[2][1])
	assert.Equal(t, "neutral", values[1][4])
	assert.Equal(t, "2020-06-01", values[1][6])
}

type fakeSheetsAPI struct {
	calls       []string
	rowsWritten int
	inputOption string
	mu          sync.Mutex
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && path == "/v4/spreadsheets":
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-123","sheets":[{"properties":{"sheetId":7,"title":"Feedback"}}]}`))
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rowsWritten += len(vr.Values)
		f.inputOption = r.URL.Query().Get("valueInputOption")
		_, _ = w.Write([]byte(`{}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func TestWriter_Write(t *testing.T) {
	api := &fakeSheetsAPI{}
	server := httptest.NewServer(api)
	defer server.Close()

	ctx := context.Background()
	service, err := sheets.NewService(ctx,
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	config := DefaultConfig()
	config.BatchSize = 2
	config.RetryAttempts = 1
	config.RetryDelay = time.Millisecond

	writer := NewWriterWithService(service, config, nil)
	require.NoError(t, writer.Write(ctx, testRecords(5)))

	api.mu.Lock()
	defer api.mu.Unlock()

	assert.Equal(t, 6, api.rowsWritten)
	assert.Equal(t, "RAW", api.inputOption)
	assert.Equal(t, "POST /v4/spreadsheets", api.calls[0])
	assert.Equal(t, "sheet-123", writer.config.SpreadsheetID)

	var puts, batchUpdates int
	for _, call := range api.calls {
		if strings.HasPrefix(call, "PUT ") {
			puts++
		}
		if strings.HasSuffix(call, ":batchUpdate") {
			batchUpdates++
		}
	}
	assert.Equal(t, 3, puts)
	assert.Equal(t, 1, batchUpdates)
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		retryable bool
		rateLimit bool
	}{
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, retryable: true, rateLimit: true},
		{name: "forbidden", err: &googleapi.Error{Code: http.StatusForbidden}, retryable: false},
		{name: "not found wrapped", err: fmt.Errorf("unable to access spreadsheet: %w", &googleapi.Error{Code: http.StatusNotFound}), retryable: false},
		{name: "unavailable", err: &googleapi.Error{Code: http.StatusServiceUnavailable}, retryable: true},
		{name: "transport", err: errors.New("connection reset"), retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyAPIError(tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.retryable, common.IsRetryable(err))
			assert.Equal(t, tt.rateLimit, errors.Is(err, common.ErrRateLimit))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classifyAPIError(nil))
}

func TestWriter_Write_RetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int
		wantMax   bool
	}{
		{name: "client error is not retried", status: http.StatusForbidden, wantCalls: 1},
		{name: "server error is retried", status: http.StatusServiceUnavailable, wantCalls: 3, wantMax: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				mu.Lock()
				calls++
				mu.Unlock()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":` + strconv.Itoa(tt.status) + `,"message":"nope"}}`))
			}))
			defer server.Close()

			ctx := context.Background()
			service, err := sheets.NewService(ctx,
				option.WithEndpoint(server.URL+"/"),
				option.WithHTTPClient(server.Client()),
			)
			require.NoError(t, err)

			config := DefaultConfig()
			config.RetryAttempts = 3
			config.RetryDelay = time.Millisecond

			err = NewWriterWithService(service, config, nil).Write(ctx, testRecords(2))
			require.Error(t, err)
			assert.Equal(t, tt.wantMax, errors.Is(err, common.ErrMaxRetries))

			var apiErr *googleapi.Error
			if !tt.wantMax {
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.Code)
			}

			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}
