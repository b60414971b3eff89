package contracts

import (
	"context"
	"time"
)

// PriceSource fetches daily prices for a ticker over [start, end]
// ⭐ SSOT: 가격 조회 인터페이스
type PriceSource interface {
	FetchPrices(ctx context.Context, ticker string, start, end time.Time) (PriceSeries, error)
}

// HeadlineSource fetches news headlines for a ticker on the given dates
// ⭐ SSOT: 뉴스 조회 인터페이스
type HeadlineSource interface {
	FetchHeadlines(ctx context.Context, ticker string, dates []time.Time) ([]Headline, error)
}
