package news

import (
	"context"
	"strconv"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

const companyNewsWindow = 7 * 24 * time.Hour

type FinnHubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client}
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

func (c *FinnHubClient) Fetch(ctx context.Context, symbols []string, limit int) ([]Article, error) {
	if len(symbols) == 0 {
		return c.fetchMarket(ctx, limit)
	}
	return c.fetchCompany(ctx, symbols, limit)
}

func (c *FinnHubClient) fetchMarket(ctx context.Context, limit int) ([]Article, error) {
	res, _, err := c.client.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, err
	}

	var articles []Article
	for _, item := range res {
		if len(articles) >= limit {
			break
		}

		a := Article{Source: c.Name()}

		if item.Id != nil {
			a.ExternalID = strconv.FormatInt(*item.Id, 10)
		}
		if item.Headline != nil {
			a.Headline = *item.Headline
		}
		if item.Summary != nil {
			a.Detail = *item.Summary
		}
		if item.Url != nil {
			a.URL = *item.Url
		}
		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0)
		}
		if item.Source != nil {
			a.Publisher = *item.Source
		}
		if item.Related != nil && *item.Related != "" {
			a.Symbols = strings.Split(*item.Related, ",")
		} else {
			a.Symbols = []string{}
		}

		articles = append(articles, a)
	}

	return articles, nil
}

func (c *FinnHubClient) fetchCompany(ctx context.Context, symbols []string, limit int) ([]Article, error) {
	to := time.Now().UTC()
	from := to.Add(-companyNewsWindow)

	var articles []Article
	for _, symbol := range symbols {
		if len(articles) >= limit {
			break
		}

		res, _, err := c.client.CompanyNews(ctx).
			Symbol(symbol).
			From(from.Format("2006-01-02")).
			To(to.Format("2006-01-02")).
			Execute()
		if err != nil {
			return nil, err
		}

		for _, item := range res {
			if len(articles) >= limit {
				break
			}

			a := Article{
				Source:  c.Name(),
				Symbols: []string{symbol},
			}

			if item.Id != nil {
				a.ExternalID = strconv.FormatInt(*item.Id, 10)
			}
			if item.Headline != nil {
				a.Headline = *item.Headline
			}
			if item.Summary != nil {
				a.Detail = *item.Summary
			}
			if item.Url != nil {
				a.URL = *item.Url
			}
			if item.Datetime != nil {
				a.PublishedAt = time.Unix(*item.Datetime, 0)
			}
			if item.Source != nil {
				a.Publisher = *item.Source
			}

			articles = append(articles, a)
		}
	}

	return articles, nil
}
