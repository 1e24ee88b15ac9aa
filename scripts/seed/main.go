package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/agrilens/dashboard/internal/companies"
)

var (
	categories = []string{"Precision Agriculture", "Robotics", "Biologicals", "Indoor Farming", "Imagery", "Soil Sensing", "Supply Chain", "Farm Software"}
	stages     = []string{"Pre-Seed", "Seed", "Series A", "Series B", "Series C", "Series D", "IPO (Public)"}
	places     = []struct{ country, city string }{
		{"USA", "San Francisco, CA"}, {"USA", "Boston, MA"}, {"USA", "Des Moines, IA"},
		{"Israel", "Tel Aviv"}, {"India", "Bengaluru"}, {"Brazil", "São Paulo"},
		{"Netherlands", "Wageningen"}, {"Kenya", "Nairobi"}, {"Australia", "Brisbane"},
	}
	techs    = []string{"Computer Vision", "IoT", "Drones", "Machine Learning", "Microbiome", "Satellite Imagery", "Blockchain", "Gene Editing", "Hydroponics", "Edge Computing"}
	prefixes = []string{"Agri", "Crop", "Farm", "Field", "Soil", "Harvest", "Seed", "Terra", "Green", "Root"}
	suffixes = []string{"Wise", "Sense", "Logic", "Labs", "Works", "Metrics", "Bio", "Grid", "Pulse", "Scope"}
	statuses = []string{"", "", "", "", "Acquired", "Public"}
)

func main() {
	out := pflag.StringP("out", "o", "data/companies.json", "file to write (.json, .yaml or .yml)")
	n := pflag.IntP("companies", "n", 120, "number of companies to generate")
	seed := pflag.Uint64("seed", 42, "random seed")
	pflag.Parse()

	ds := generate(*n, *seed)
	raw, err := encode(ds, *out)
	if err != nil {
		log.Fatalf("encode dataset: %v", err)
	}
	if err := atomic.WriteFile(*out, bytes.NewReader(raw)); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("→ wrote %d companies to %s\n", len(ds.Companies), *out)
}

func encode(ds *companies.Dataset, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(ds)
	default:
		return json.MarshalIndent(ds, "", "  ")
	}
}

// generate builds a deterministic synthetic dataset of n companies together
// with the aggregates the dashboard charts read.
func generate(n int, seed uint64) *companies.Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ds := &companies.Dataset{Companies: make([]companies.Record, 0, n)}
	used := make(map[string]int)

	perCountry := make(map[string]int)
	perCategory := make(map[string]float64)
	perStage := make(map[string]float64)
	perYear := make(map[int]float64)
	var total float64

	for i := 0; i < n; i++ {
		name := prefixes[rng.IntN(len(prefixes))] + suffixes[rng.IntN(len(suffixes))]
		used[name]++
		if used[name] > 1 {
			name = fmt.Sprintf("%s %d", name, used[name])
		}
		place := places[rng.IntN(len(places))]
		rec := companies.Record{
			Name:     name,
			Category: categories[rng.IntN(len(categories))],
			Stage:    stages[rng.IntN(len(stages))],
			Country:  place.country,
			Location: place.city,
			Status:   statuses[rng.IntN(len(statuses))],
			Tech:     pickTech(rng),
		}
		// Leave some attributes absent so the dashboard placeholders show up.
		if rng.IntN(10) > 0 {
			funding := float64(rng.IntN(4000)) / 4
			rec.Funding = &funding
			total += funding
			perStage[rec.Stage] += funding
		}
		if rng.IntN(8) > 0 {
			founded := 2005 + rng.IntN(19)
			rec.Founded = &founded
			round := min(2024, founded+1+rng.IntN(5))
			rec.LastRoundYear = &round
			if rec.Funding != nil {
				perYear[round] += *rec.Funding
			}
		}
		if rng.IntN(3) > 0 {
			employees := 5 + rng.IntN(800)
			rec.Employees = &employees
		}
		perCountry[rec.Country]++
		perCategory[rec.Category]++
		ds.Companies = append(ds.Companies, rec)
	}

	ds.Overview = companies.Overview{
		TotalCompanies: n,
		MarketSize:     "$29.5B",
		GitHubRepos:    1200 + rng.IntN(800),
		TotalFunding:   fmt.Sprintf("$%.1fB", total/1000),
		GrowthRate:     12.5,
	}
	for _, name := range sortedKeys(perCategory) {
		ds.Technologies.Categories = append(ds.Technologies.Categories, companies.NamedValue{Name: name, Value: perCategory[name]})
	}
	for _, country := range sortedKeys(perCountry) {
		ds.Geography.Distribution = append(ds.Geography.Distribution, companies.CountryCount{Country: country, Count: perCountry[country]})
	}
	for _, stage := range stages {
		if amount, ok := perStage[stage]; ok {
			ds.Funding.ByStage = append(ds.Funding.ByStage, companies.StageAmount{Stage: stage, Amount: amount})
		}
	}
	years := make([]int, 0, len(perYear))
	for year := range perYear {
		years = append(years, year)
	}
	sort.Ints(years)
	for _, year := range years {
		ds.Funding.Trends = append(ds.Funding.Trends, companies.YearAmount{Year: year, Amount: perYear[year]})
	}
	for q := 1; q <= 4; q++ {
		ds.Funding.Quarterly = append(ds.Funding.Quarterly, companies.QuarterAmount{
			Quarter: fmt.Sprintf("Q%d 2024", q),
			Amount:  float64(500 + rng.IntN(1500)),
			Deals:   20 + rng.IntN(60),
		})
	}
	for i, name := range []string{"farmOS", "FarmBot", "OpenAg", "AgML", "PlantCV"} {
		ds.GitHub.TopRepos = append(ds.GitHub.TopRepos, companies.Repo{Name: name, Stars: 4000 - i*600 + rng.IntN(300), Forks: 300 + rng.IntN(400)})
	}
	for _, cat := range categories[:5] {
		ds.Patents.ByCategory = append(ds.Patents.ByCategory, companies.CategoryCount{Category: cat, Count: 50 + rng.IntN(400)})
	}
	return ds
}

func pickTech(rng *rand.Rand) companies.TechList {
	count := rng.IntN(4)
	if count == 0 {
		return nil
	}
	perm := rng.Perm(len(techs))
	out := make(companies.TechList, 0, count)
	for _, idx := range perm[:count] {
		out = append(out, techs[idx])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
