package exporter

import (
	"context"
	"fmt"

	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
)

var transactionHeaders = []string{
	HeaderPublisherName,
	HeaderPublisherID,
	"Transaction type",
	"Currency",
	"Transaction year",
	"Value",
}

// transactionsReport flattens type -> currency -> year -> value for every
// publisher in title order
type transactionsReport struct {
	baseReport
	src Sources
}

func (r *transactionsReport) Write(ctx context.Context, w *CSVWriter) (int, error) {
	publishers, err := r.src.Titles.PublishersByTitle()
	if err != nil {
		return 0, err
	}

	return w.WriteRows(ctx, r.file, transactionHeaders, func(emit func([]string) error) error {
		for _, pub := range publishers {
			byType, err := r.src.Stats.TransactionsByTypeByYear(pub.ID)
			if err != nil {
				return err
			}
			err = byType.Each(func(txType string, v files.Value) error {
				byCurrency, err := nested(v, pub.ID, txType)
				if err != nil {
					return err
				}
				return byCurrency.Each(func(currency string, v files.Value) error {
					byYear, err := nested(v, pub.ID, txType, currency)
					if err != nil {
						return err
					}
					return byYear.Each(func(year string, value files.Value) error {
						return emit([]string{pub.Title, pub.ID, txType, currency, year, value.Text()})
					})
				})
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func nested(v files.Value, path ...string) (*files.Object, error) {
	obj, ok := v.AsObject()
	if !ok {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("transactions %v: expected object, got %s", path, v.Kind()), nil)
	}
	return obj, nil
}
