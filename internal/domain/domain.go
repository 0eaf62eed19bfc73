package domain

import "time"

// NewsItem is one stored headline. Title is the dedup identity: a re-fetched
// item whose title already exists in the store is never re-inserted.
type NewsItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
	Link        string    `json:"link"`
	ImageURL    string    `json:"image_url"`
}

// PredictionRecord is one fetched model prediction. Rows are append-only;
// the current state for a (symbol, model) pair is the row with the maximum
// FetchedAt.
type PredictionRecord struct {
	ID             int64     `json:"id"`
	StockSymbol    string    `json:"stock_symbol"`
	ModelID        int       `json:"model_id"`
	CurrentClose   float64   `json:"current_close"`
	PredictedClose float64   `json:"predicted_close"`
	Status         string    `json:"status"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// PredictionModel identifies one upstream prediction endpoint.
type PredictionModel struct {
	StockSymbol string
	ModelID     int
	Path        string
}

// PredictionModels lists the tracked stock/model pairs and their endpoint
// paths on the prediction service.
var PredictionModels = []PredictionModel{
	{StockSymbol: "HDFCBANK", ModelID: 1, Path: "/aironix/model_1_prediction"},
	{StockSymbol: "SBIN", ModelID: 2, Path: "/aironix/model_2_prediction"},
	{StockSymbol: "INFY", ModelID: 3, Path: "/aironix/model_3_prediction"},
	{StockSymbol: "TATAMOTORS", ModelID: 4, Path: "/aironix/model_4_prediction"},
}

// DefaultNewsRetentionCap bounds the stored news collection; the excess is
// evicted oldest-by-publication-date first.
const DefaultNewsRetentionCap = 20
