package bills

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huettenzauber/kiosk/pkg/backend"
)

var (
	statisticsHeader = []string{"rank", "item", "variant", "quantity", "revenue"}
	billsHeader      = []string{"bill_id", "date", "variant", "quantity", "price", "line_total"}
)

// ExportStatisticsCSV writes one row per item and, for items sold in more
// than one variant, one indented row per variant.
func ExportStatisticsCSV(w io.Writer, stats *Statistics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(statisticsHeader); err != nil {
		return err
	}
	if stats != nil {
		for i, item := range stats.Items {
			row := []string{
				"#" + strconv.Itoa(i+1),
				item.ItemName,
				"",
				item.DisplayQuantity.String(),
				item.Revenue.StringFixed(2),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
			if len(item.Variants) < 2 {
				continue
			}
			for _, v := range item.Variants {
				row := []string{"", "", "- " + v.VariantName, v.DisplayQuantity.String(), v.Revenue.StringFixed(2)}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportBillsCSV writes one row per bill line. Variants unknown to the
// catalog are exported by id.
func ExportBillsCSV(w io.Writer, bills []backend.Bill, catalog variantLookup) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(billsHeader); err != nil {
		return err
	}
	for _, bill := range bills {
		for _, line := range bill.Items {
			label := fmt.Sprintf("#%d", line.ItemVariantID)
			price := line.ItemPrice.Decimal
			if item, variant, ok := catalog.Variant(line.ItemVariantID); ok {
				name := variant.Name
				if name == "" {
					name = DefaultVariantName
				}
				label = item.Name + " (" + name + ")"
				price = linePrice(line, variant)
			}
			row := []string{
				strconv.FormatInt(bill.ID, 10),
				bill.Date,
				label,
				line.ItemQuantity.String(),
				price.StringFixed(2),
				price.Mul(line.ItemQuantity).StringFixed(2),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
