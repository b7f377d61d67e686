package exports

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// RenderPDF lays the blocks out on A4 pages and returns the PDF bytes.
// Headings shrink with depth, bullets get a leading marker. An empty block
// list still yields a valid single-page document.
func RenderPDF(title string, blocks []Block) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)

	if title != "" {
		m.AddRows(
			row.New(12).Add(
				col.New(12).Add(
					text.New(title, props.Text{
						Size:  16,
						Style: fontstyle.Bold,
					}),
				),
			),
		)
	}

	for _, block := range blocks {
		m.AddRows(blockRow(block))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func blockRow(block Block) core.Row {
	switch block.Kind {
	case BlockHeading:
		size := 16.0 - float64(block.Level)
		if size < 10 {
			size = 10
		}
		return row.New(10).Add(
			col.New(12).Add(
				text.New(block.Text, props.Text{
					Size:  size,
					Style: fontstyle.Bold,
				}),
			),
		)
	case BlockBullet:
		return row.New(6).Add(
			col.New(12).Add(
				text.New("• "+block.Text, props.Text{
					Size: 10,
					Left: 4,
				}),
			),
		)
	default:
		return row.New(6).Add(
			col.New(12).Add(
				text.New(block.Text, props.Text{Size: 10}),
			),
		)
	}
}
