package main

import (
	"context"
	"fmt"
	"os"

	"strategy-charts/internal/features/charts"
	"strategy-charts/internal/infra/fs"
	"strategy-charts/internal/report"
)

const sampleInput = `{
  "picks": [
    {"id": "Levee upgrade", "cost": 12000000, "benefit": 0.42},
    {"id": "Flood sensors", "cost": 25000, "benefit": 0.08},
    {"id": "Relocation", "cost": 3500000, "benefit": 0.31},
    {"id": "Green roofs", "cost": 800000, "benefit": 0.12}
  ],
  "sites": [
    {"Risk": 0.05}, {"Risk": 0.18}, {"Risk": 0.22}, {"Risk": 0.47},
    {"Risk": 0.51}, {"Risk": 0.66}, {"Risk": 0.83}, {"Risk": 0.97}
  ]
}`

// go run etc/tools/sample_charts.go
// in etc/charts/*.png
func main() {
	fmt.Println("Generating sample charts...")

	res := charts.NewGenerator(charts.DefaultOptions(), nil).
		Generate(context.Background(), report.ParseInput([]byte(sampleInput)))

	for _, c := range res.Charts {
		path, err := fs.SavePNG("etc/charts", c.Name, c.PNG)
		if err != nil {
			fmt.Printf("Error saving chart %s: %v\n", c.Name, err)
			os.Exit(1)
		}
		fmt.Printf("Chart generated successfully: %s\n", path)
	}
}
