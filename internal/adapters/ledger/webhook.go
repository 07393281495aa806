// Package ledger posts completed sales to an external spreadsheet-backed
// webhook. The transport mode cannot observe the response, so a record
// attempt always counts as succeeded; failures are only logged.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danghuy/secondcell/internal/domain"
)

type Webhook struct {
	url        string
	httpClient *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{url: url, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

type saleRow struct {
	CustomerName string `json:"customerName"`
	CustomerTel  string `json:"customerTel"`
	BuyingPrice  int    `json:"buyingPrice"`
	SellingPrice int    `json:"sellingPrice"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	ProductType  string `json:"productType"`
	SoldAt       string `json:"soldAt"`
}

// Record posts the sale and returns nil no matter what: the caller must
// not treat the catalog as un-sellable because a spreadsheet was down.
func (wh *Webhook) Record(ctx context.Context, s *domain.Sale) error {
	if wh.url == "" {
		log.Debug().Msg("ledger webhook not configured, sale not exported")
		return nil
	}

	row := saleRow{
		CustomerName: s.CustomerName,
		CustomerTel:  s.CustomerTel,
		BuyingPrice:  s.BuyingPrice,
		SellingPrice: s.SellingPrice,
		ProductID:    s.Product.ID,
		ProductName:  s.Product.Name,
		ProductType:  string(s.Product.Type),
		SoldAt:       s.SoldAt.Format(time.RFC3339),
	}
	body, err := json.Marshal(row)
	if err != nil {
		log.Error().Err(err).Msg("ledger payload marshal failed")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.url, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("ledger request build failed")
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := wh.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("product", s.Product.ID).Msg("ledger webhook unreachable, sale assumed recorded")
		return nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}
