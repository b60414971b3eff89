package naver

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/alphalens/internal/contracts"
)

var kst = time.FixedZone("KST", 9*60*60)

// FetchHeadlines walks the stock news listing and returns, oldest first, the
// headlines published between the earliest and latest of dates.
// ⭐ SSOT: Naver Finance 뉴스 호출은 이 함수에서만
func (c *Client) FetchHeadlines(ctx context.Context, stockCode string, dates []time.Time) ([]contracts.Headline, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	from, to := contracts.Day(dates[0]), contracts.Day(dates[0])
	for _, d := range dates[1:] {
		d = contracts.Day(d)
		if d.Before(from) {
			from = d
		}
		if d.After(to) {
			to = d
		}
	}

	var all []contracts.Headline
	for page := 1; page <= c.maxNewsPages; page++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		params := url.Values{}
		params.Set("code", stockCode)
		params.Set("page", strconv.Itoa(page))

		body, err := c.fetch(ctx, c.financeURL, "/item/news_news.naver", params)
		if err != nil {
			return all, err
		}

		items, oldest, hasMore, err := parseNewsHTML(string(body))
		if err != nil {
			return all, fmt.Errorf("parse news page %d: %w", page, err)
		}

		for _, h := range items {
			if h.Date.Before(from) || h.Date.After(to) {
				continue
			}
			all = append(all, h)
		}

		// 기준일보다 이전 뉴스면 종료
		if !oldest.IsZero() && oldest.Before(from) {
			break
		}
		if !hasMore || len(items) == 0 {
			break
		}
	}

	// listing is newest first
	slices.Reverse(all)

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      len(all),
	}).Debug("Fetched news headlines")

	return all, nil
}

// parseNewsHTML extracts headlines from a news listing page. It returns the
// oldest date on the page and whether a next page link exists.
func parseNewsHTML(html string) ([]contracts.Headline, time.Time, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, time.Time{}, false, err
	}

	var items []contracts.Headline
	var oldest time.Time

	doc.Find("table.type5 tr").Each(func(i int, row *goquery.Selection) {
		title := strings.TrimSpace(row.Find("td.title a").First().Text())
		if title == "" {
			return
		}

		published, err := time.ParseInLocation("2006.01.02 15:04", strings.TrimSpace(row.Find("td.date").Text()), kst)
		if err != nil {
			return
		}
		d := contracts.Day(published)

		if oldest.IsZero() || d.Before(oldest) {
			oldest = d
		}

		items = append(items, contracts.Headline{
			Date:   d,
			Title:  title,
			Source: strings.TrimSpace(row.Find("td.info").Text()),
		})
	})

	hasMore := doc.Find(".pgRR").Length() > 0
	return items, oldest, hasMore, nil
}
