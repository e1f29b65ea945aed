package summary_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/client"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/production"
	"github.com/horno-sanmarino/bakery-api/internal/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// fakeAPI serves canned production endpoints and records what it was asked
type fakeAPI struct {
	mu sync.Mutex

	dashboard     map[string][]domain.SummaryItemDTO
	tasks         []domain.ProductionTaskDTO
	summaryCalls  [][]string
	progressReqs  []domain.RegisterProgressRequest
	voidedOrders  []string
	failSummaries bool
	failProgress  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{dashboard: make(map[string][]domain.SummaryItemDTO)}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/production/summary", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failSummaries {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(domain.APIError{Title: "boom", Status: http.StatusInternalServerError})
			return
		}

		buckets := r.URL.Query()["bucket"]
		f.summaryCalls = append(f.summaryCalls, buckets)
		if len(buckets) == 0 {
			for _, b := range production.Buckets {
				buckets = append(buckets, string(b))
			}
		}

		resp := domain.SummaryResponse{Dashboard: make(map[string][]domain.SummaryItemDTO)}
		for _, b := range buckets {
			resp.Dashboard[b] = f.dashboard[b]
		}
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("POST /api/v1/production/progress", func(w http.ResponseWriter, r *http.Request) {
		var req domain.RegisterProgressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.progressReqs = append(f.progressReqs, req)
		failProgress := f.failProgress
		f.mu.Unlock()

		if failProgress {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(domain.APIError{Title: "boom", Status: http.StatusInternalServerError})
			return
		}

		resp := domain.RegisterProgressResponse{}
		for _, item := range req.Items {
			resp.Applied = append(resp.Applied, domain.ProgressResult{
				ProductName: item.ProductName,
				Requested:   item.Quantity,
				Applied:     item.Quantity,
			})
		}
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("PATCH /api/v1/production/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/void") {
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1/production/"), "/void")
			f.mu.Lock()
			f.voidedOrders = append(f.voidedOrders, id)
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("GET /api/v1/production/all-orders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		tasks := f.tasks
		f.mu.Unlock()
		if tasks == nil {
			tasks = []domain.ProductionTaskDTO{
				{ID: uuid.New(), CustomerName: "Cliente", ProductionStage: "PENDING"},
			}
		}
		json.NewEncoder(w).Encode(tasks)
	})

	return mux
}

func summaryItem(name, category string, qty int, orderIDs ...uuid.UUID) domain.SummaryItemDTO {
	item := domain.SummaryItemDTO{
		ProductName:   name,
		Category:      category,
		TotalQuantity: qty,
		Urgency:       time.Now().UTC(),
	}
	for _, id := range orderIDs {
		item.Orders = append(item.Orders, domain.SummaryOrderDTO{
			ID:       id,
			Quantity: qty,
			Client:   "Cliente",
			Delivery: item.Urgency,
			Stage:    "PENDING",
		})
	}
	return item
}

func newTestBoard(t *testing.T, api *fakeAPI, opts ...summary.Option) *summary.Board {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return summary.NewBoard(client.NewClient(srv.URL, client.WithHTTPClient(srv.Client())), zap.NewNop(), opts...)
}

func TestBoard_Refresh_LoadsAllBuckets(t *testing.T) {
	api := newFakeAPI()
	api.dashboard["delayed"] = []domain.SummaryItemDTO{summaryItem("Cake", "cakes enteros", 2, uuid.New())}
	api.dashboard["today"] = []domain.SummaryItemDTO{summaryItem("Panetton", "panetton", 3, uuid.New())}
	api.dashboard["future"] = []domain.SummaryItemDTO{summaryItem("Turron", "pack de turrones", 1, uuid.New())}
	board := newTestBoard(t, api)

	require.NoError(t, board.Refresh(context.Background()))

	require.Len(t, board.Items(production.BucketDelayed), 1)
	assert.Equal(t, "Cake", board.Items(production.BucketDelayed)[0].ProductName)
	require.Len(t, board.Items(production.BucketToday), 1)
	assert.Equal(t, 3, board.Items(production.BucketToday)[0].TotalQuantity)
	assert.Empty(t, board.Items(production.BucketTomorrow))
	require.Len(t, board.Items(production.BucketFuture), 1)
	assert.False(t, board.RawMode())

	// staged loading queries one bucket per request
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Len(t, api.summaryCalls, 4)
	for _, call := range api.summaryCalls {
		assert.Len(t, call, 1)
	}
}

func TestBoard_RefreshAll_SingleRequest(t *testing.T) {
	api := newFakeAPI()
	api.dashboard["today"] = []domain.SummaryItemDTO{summaryItem("Cake", "cakes enteros", 5, uuid.New())}
	board := newTestBoard(t, api)

	require.NoError(t, board.RefreshAll(context.Background()))

	require.Len(t, board.Items(production.BucketToday), 1)
	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.summaryCalls, 1)
	assert.Empty(t, api.summaryCalls[0])
}

func TestBoard_Refresh_ServerError(t *testing.T) {
	api := newFakeAPI()
	api.failSummaries = true
	board := newTestBoard(t, api)

	err := board.Refresh(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestBoard_Err_TracksLastRefresh(t *testing.T) {
	api := newFakeAPI()
	api.dashboard["today"] = []domain.SummaryItemDTO{summaryItem("Cake", "cakes enteros", 1, uuid.New())}
	board := newTestBoard(t, api)

	require.NoError(t, board.RefreshAll(context.Background()))
	assert.NoError(t, board.Err())

	api.mu.Lock()
	api.failSummaries = true
	api.mu.Unlock()
	require.Error(t, board.Refresh(context.Background()))
	assert.Error(t, board.Err())

	// previously loaded buckets survive a failed refresh
	require.Len(t, board.Items(production.BucketToday), 1)

	api.mu.Lock()
	api.failSummaries = false
	api.mu.Unlock()
	require.NoError(t, board.Refresh(context.Background()))
	assert.NoError(t, board.Err())
}

func TestBoard_Refresh_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 8)
	var requests atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/production/summary", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		started <- struct{}{}
		<-release
		json.NewEncoder(w).Encode(domain.SummaryResponse{Dashboard: map[string][]domain.SummaryItemDTO{}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	board := summary.NewBoard(client.NewClient(srv.URL, client.WithHTTPClient(srv.Client())), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- board.Refresh(context.Background()) }()
	<-started

	// a second refresh while one is in flight is a no-op
	require.NoError(t, board.Refresh(context.Background()))

	close(release)
	require.NoError(t, <-done)

	// one bucket request per bucket from the single refresh that ran
	assert.EqualValues(t, 4, requests.Load())
}

func TestBoard_RefreshRaw(t *testing.T) {
	api := newFakeAPI()
	board := newTestBoard(t, api)

	require.NoError(t, board.RefreshRaw(context.Background()))
	assert.True(t, board.RawMode())
	assert.Len(t, board.RawTasks(), 1)
}

func TestBoard_RefreshRaw_BucketsUnfiltered(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	api := newFakeAPI()
	api.tasks = []domain.ProductionTaskDTO{
		{
			ID:              uuid.New(),
			CustomerName:    "Ana",
			DeliveryDate:    time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
			ProductionStage: "FINISHED",
			Products:        []domain.OrderProductDTO{{Name: "Cake", Quantity: 2, Category: "cakes enteros"}},
		},
		{
			ID:              uuid.New(),
			CustomerName:    "Luis",
			DeliveryDate:    time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC),
			ProductionStage: "VOID",
			Products:        []domain.OrderProductDTO{{Name: "Panetton", Quantity: 3, Category: "panetton"}},
		},
		{
			ID:              uuid.New(),
			CustomerName:    "María",
			DeliveryDate:    time.Date(2024, 6, 16, 9, 0, 0, 0, time.UTC),
			ProductionStage: "PENDING",
			Products:        []domain.OrderProductDTO{{Name: "Cake", Quantity: 1, Category: "cakes enteros"}},
		},
		{
			ID:              uuid.New(),
			CustomerName:    "Sin fecha",
			ProductionStage: "PENDING",
			Products:        []domain.OrderProductDTO{{Name: "Brownie", Quantity: 4}},
		},
	}
	board := newTestBoard(t, api,
		summary.WithLocation(time.UTC),
		summary.WithClock(func() time.Time { return now }),
	)

	require.NoError(t, board.RefreshRaw(context.Background()))
	assert.True(t, board.RawMode())
	assert.Len(t, board.RawTasks(), 4)

	// finished and void orders stay visible in their buckets
	today := board.Items(production.BucketToday)
	require.Len(t, today, 1)
	assert.Equal(t, "Cake", today[0].ProductName)
	assert.Equal(t, 2, today[0].TotalQuantity)
	require.Len(t, today[0].Orders, 1)
	assert.Equal(t, domain.StageFinished, today[0].Orders[0].Stage)

	delayed := board.Items(production.BucketDelayed)
	require.Len(t, delayed, 1)
	assert.Equal(t, "Panetton", delayed[0].ProductName)
	assert.Equal(t, 3, delayed[0].TotalQuantity)
	require.Len(t, delayed[0].Orders, 1)
	assert.Equal(t, domain.StageVoid, delayed[0].Orders[0].Stage)

	tomorrow := board.Items(production.BucketTomorrow)
	require.Len(t, tomorrow, 1)
	assert.Equal(t, 1, tomorrow[0].TotalQuantity)

	// an order without a delivery date lands in no bucket
	assert.Empty(t, board.Items(production.BucketFuture))
}

func TestBoard_Groups(t *testing.T) {
	api := newFakeAPI()
	api.dashboard["today"] = []domain.SummaryItemDTO{
		summaryItem("Brownie", "individual", 2, uuid.New()),
		summaryItem("Cake", "cakes enteros", 1, uuid.New()),
	}
	board := newTestBoard(t, api)
	require.NoError(t, board.RefreshAll(context.Background()))

	groups := board.Groups(production.BucketToday)
	require.Len(t, groups, 2)
	assert.Equal(t, "cakes enteros", groups[0].Name)
	assert.True(t, groups[0].Expanded)

	board.ToggleCategory(groups[0].ID)
	groups = board.Groups(production.BucketToday)
	assert.False(t, groups[0].Expanded)
}

func TestBoard_Selection(t *testing.T) {
	api := newFakeAPI()
	board := newTestBoard(t, api)

	assert.True(t, board.ToggleSelection(production.BucketToday, "Cake"))
	assert.True(t, board.IsSelected(production.BucketToday, "Cake"))
	assert.False(t, board.IsSelected(production.BucketTomorrow, "Cake"), "selection is per bucket")
	assert.Equal(t, 1, board.SelectionCount())

	assert.False(t, board.ToggleSelection(production.BucketToday, "Cake"))
	assert.Equal(t, 0, board.SelectionCount())

	board.ToggleSelection(production.BucketToday, "Cake")
	board.ClearSelection()
	assert.Equal(t, 0, board.SelectionCount())
}

func TestBoard_BatchRegister(t *testing.T) {
	api := newFakeAPI()
	api.dashboard["today"] = []domain.SummaryItemDTO{
		summaryItem("Cake", "cakes enteros", 5, uuid.New()),
		summaryItem("Panetton", "panetton", 3, uuid.New()),
	}
	api.dashboard["tomorrow"] = []domain.SummaryItemDTO{
		summaryItem("Cake", "cakes enteros", 2, uuid.New()),
	}
	board := newTestBoard(t, api)
	require.NoError(t, board.RefreshAll(context.Background()))

	board.ToggleSelection(production.BucketToday, "Cake")
	board.ToggleSelection(production.BucketTomorrow, "Cake")
	board.ToggleSelection(production.BucketToday, "Panetton")

	resp, err := board.BatchRegister(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Applied, 2)

	api.mu.Lock()
	require.Len(t, api.progressReqs, 1)
	req := api.progressReqs[0]
	api.mu.Unlock()

	// same product across buckets collapses into one combined line
	require.Len(t, req.Items, 2)
	byName := make(map[string]int, len(req.Items))
	for _, item := range req.Items {
		byName[item.ProductName] = item.Quantity
	}
	assert.Equal(t, 7, byName["Cake"])
	assert.Equal(t, 3, byName["Panetton"])

	assert.Equal(t, 0, board.SelectionCount(), "selection clears after registration")
}

func TestBoard_BatchRegister_FailureClearsAndRefetches(t *testing.T) {
	api := newFakeAPI()
	api.dashboard["today"] = []domain.SummaryItemDTO{summaryItem("Cake", "cakes enteros", 5, uuid.New())}
	board := newTestBoard(t, api)
	require.NoError(t, board.RefreshAll(context.Background()))

	board.ToggleSelection(production.BucketToday, "Cake")

	api.mu.Lock()
	api.failProgress = true
	api.mu.Unlock()

	_, err := board.BatchRegister(context.Background())
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	// selection clears and the board refetches even when registration fails
	assert.Equal(t, 0, board.SelectionCount())

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.progressReqs, 1)
	// one call from RefreshAll, four single-bucket calls from the refetch
	assert.Len(t, api.summaryCalls, 5)
}

func TestBoard_BatchRegister_NothingSelected(t *testing.T) {
	api := newFakeAPI()
	board := newTestBoard(t, api)

	_, err := board.BatchRegister(context.Background())
	assert.Error(t, err)
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Empty(t, api.progressReqs)
}

func TestBoard_VoidItem(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	api := newFakeAPI()
	api.dashboard["today"] = []domain.SummaryItemDTO{
		{
			ProductName:   "Cake",
			Category:      "cakes enteros",
			TotalQuantity: 5,
			Orders: []domain.SummaryOrderDTO{
				{ID: first, Quantity: 2, Client: "A", Stage: "PENDING"},
				{ID: second, Quantity: 3, Client: "B", Stage: "PENDING"},
			},
		},
	}
	board := newTestBoard(t, api)
	require.NoError(t, board.RefreshAll(context.Background()))

	require.NoError(t, board.VoidItem(context.Background(), production.BucketToday, "Cake"))

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.ElementsMatch(t, []string{first.String(), second.String()}, api.voidedOrders)
}

func TestBoard_VoidItem_UnknownProduct(t *testing.T) {
	api := newFakeAPI()
	board := newTestBoard(t, api)

	err := board.VoidItem(context.Background(), production.BucketToday, "Inexistente")
	assert.Error(t, err)
}
