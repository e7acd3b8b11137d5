package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/smokyabdulrahman/vakit/internal/cache"
	"github.com/smokyabdulrahman/vakit/internal/config"
	"github.com/smokyabdulrahman/vakit/internal/countdown"
	"github.com/smokyabdulrahman/vakit/internal/display"
	"github.com/smokyabdulrahman/vakit/internal/geo"
	"github.com/spf13/cobra"
)

func newCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List countries and their ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := lookupList(cmd, cache.Countries, "")
			if err != nil {
				return err
			}
			loadedConfig.Countries = items
			keepLists(cmd)
			return printPlaces(cmd.OutOrStdout(), "Country", items)
		},
	}
}

func newCitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities [country-id]",
		Short: "List the cities of a country",
		Long:  "List the cities of a country and their ids. Defaults to the selected country.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			countryID := loadedConfig.Location.CountryID
			if len(args) > 0 {
				countryID = args[0]
			}
			if countryID == "" {
				return errors.New("no country selected; pass a country id (see `vakit countries`)")
			}

			items, err := lookupList(cmd, cache.Cities, countryID)
			if err != nil {
				return err
			}
			if countryID == loadedConfig.Location.CountryID {
				loadedConfig.Cities = items
				keepLists(cmd)
			}
			return printPlaces(cmd.OutOrStdout(), "City", items)
		},
	}
}

func newDistrictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "districts [city-id]",
		Short: "List the districts of a city",
		Long:  "List the districts of a city and their ids. Defaults to the selected city.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cityID := loadedConfig.Location.CityID
			if len(args) > 0 {
				cityID = args[0]
			}
			if cityID == "" {
				return errors.New("no city selected; pass a city id (see `vakit cities`)")
			}

			items, err := lookupList(cmd, cache.Districts, cityID)
			if err != nil {
				return err
			}
			if cityID == loadedConfig.Location.CityID {
				loadedConfig.Districts = items
				keepLists(cmd)
			}
			return printPlaces(cmd.OutOrStdout(), "District", items)
		},
	}
}

var (
	flagSelectCountry  string
	flagSelectCity     string
	flagSelectDistrict string
)

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Choose the location prayer times are fetched for",
		Long: "Choose the country, city and district by name or id. Names match without regard\n" +
			"to case or accents. Without --district the district named like the city is used.\n\n" +
			"Examples:\n  vakit select --city istanbul --district uskudar\n  vakit select --country ALMANYA --city BERLIN",
		Args: cobra.NoArgs,
		RunE: runSelect,
	}

	cmd.Flags().StringVar(&flagSelectCountry, "country", "", "Country name or id (default: the selected country)")
	cmd.Flags().StringVar(&flagSelectCity, "city", "", "City name or id")
	cmd.Flags().StringVar(&flagSelectDistrict, "district", "", "District name or id")

	return cmd
}

func runSelect(cmd *cobra.Command, args []string) error {
	if flagSelectCountry == "" && flagSelectCity == "" && flagSelectDistrict == "" {
		return errors.New("nothing to select; pass --country, --city or --district")
	}

	loc := loadedConfig.Location
	var countries map[string]string

	if flagSelectCountry != "" {
		items, err := lookupList(cmd, cache.Countries, "")
		if err != nil {
			return err
		}
		name, id, err := pick(items, "country", flagSelectCountry)
		if err != nil {
			return err
		}
		countries = items
		loc.Country, loc.CountryID = name, id
	}
	if loc.CountryID == "" {
		return errors.New("--country is required")
	}

	cities, err := lookupList(cmd, cache.Cities, loc.CountryID)
	if err != nil {
		return err
	}
	switch {
	case flagSelectCity != "":
		name, id, err := pick(cities, "city", flagSelectCity)
		if err != nil {
			return err
		}
		loc.City, loc.CityID = name, id
	case loc.CountryID != loadedConfig.Location.CountryID || loc.CityID == "":
		return errors.New("--city is required")
	}

	districts, err := lookupList(cmd, cache.Districts, loc.CityID)
	if err != nil {
		return err
	}
	query := flagSelectDistrict
	if query == "" {
		query = loc.City
	}
	name, id, err := pick(districts, "district", query)
	if err != nil {
		if flagSelectDistrict == "" {
			return fmt.Errorf("--district is required: %w", err)
		}
		return err
	}
	loc.District, loc.DistrictID = name, id

	return applyLocation(cmd, loc, countries, cities, districts)
}

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Select the location from IP geolocation",
		Long:  "Detect the country, region and city from the public IP address and select the\nmatching country, city and district.",
		Args:  cobra.NoArgs,
		RunE:  runLocate,
	}
}

func runLocate(cmd *cobra.Command, args []string) error {
	if FlagOffline {
		return errors.New("locate needs the network; drop --offline")
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	c := openCache(cmd)

	var detected *geo.Location
	if c != nil {
		detected = c.LoadGeo()
	}
	if detected == nil {
		d, err := geo.DetectLocation(ctx)
		if err != nil {
			return fmt.Errorf("%s %w", countdown.StatusNetworkError, err)
		}
		detected = d
		if c != nil {
			if err := c.SaveGeo(detected); err != nil {
				warnf(cmd, "cache write failed: %v", err)
			}
		}
	}
	fmt.Fprintf(out, "Detected %s, %s, %s\n", detected.City, detected.Region, detected.Country)

	client := newClient()

	countryList, err := client.FetchCountryList(ctx)
	if err != nil {
		return fmt.Errorf("%s %w", countdown.StatusNetworkError, err)
	}
	countries := newPlaceIndex()
	for _, v := range countryList {
		countries.add(v.UlkeAdi, v.UlkeAdiEn, v.UlkeID)
	}
	var loc config.Location
	var ok bool
	if loc.Country, loc.CountryID, ok = countries.match(detected.Country, detected.CountryCode); !ok {
		return fmt.Errorf("no country matches %q; use `vakit select`", detected.Country)
	}

	cityList, err := client.FetchCityList(ctx, loc.CountryID)
	if err != nil {
		return fmt.Errorf("%s %w", countdown.StatusNetworkError, err)
	}
	cities := newPlaceIndex()
	for _, v := range cityList {
		cities.add(v.SehirAdi, v.SehirAdiEn, v.SehirID)
	}
	if loc.City, loc.CityID, ok = cities.match(detected.Region, detected.City); !ok {
		return fmt.Errorf("no city in %s matches %q; use `vakit select`", loc.Country, detected.Region)
	}

	districtList, err := client.FetchDistrictList(ctx, loc.CityID)
	if err != nil {
		return fmt.Errorf("%s %w", countdown.StatusNetworkError, err)
	}
	districts := newPlaceIndex()
	for _, v := range districtList {
		districts.add(v.IlceAdi, v.IlceAdiEn, v.IlceID)
	}
	if loc.District, loc.DistrictID, ok = districts.match(detected.City, loc.City); !ok {
		return fmt.Errorf("no district of %s matches %q; use `vakit select`", loc.City, detected.City)
	}

	if c != nil {
		saveList(cmd, c, cache.Countries, "", countries.local)
		saveList(cmd, c, cache.Cities, loc.CountryID, cities.local)
		saveList(cmd, c, cache.Districts, loc.CityID, districts.local)
	}
	return applyLocation(cmd, loc, countries.local, cities.local, districts.local)
}

// applyLocation stores a new location with its lookup lists, then makes sure
// the schedule covers it. The document is saved before the refresh so the
// location survives a failed fetch.
func applyLocation(cmd *cobra.Command, loc config.Location, countries, cities, districts map[string]string) error {
	cfg := loadedConfig
	for _, kv := range [][2]string{
		{"country", loc.Country},
		{"country_id", loc.CountryID},
		{"city", loc.City},
		{"city_id", loc.CityID},
		{"district", loc.District},
		{"district_id", loc.DistrictID},
	} {
		if err := cfg.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}
	if countries != nil {
		cfg.Countries = countries
	}
	cfg.Cities = cities
	cfg.Districts = districts

	if err := saveConfig(cmd); err != nil {
		return fmt.Errorf("%s %w", countdown.StatusSaveFailed, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Location set to %s (district %s).\n", loc.String(), loc.DistrictID)

	currentSchedule(cmd, nowFunc())
	return nil
}

// lookupList returns a name -> id list from the cache, or from the API on a
// miss. parentID is empty for countries.
func lookupList(cmd *cobra.Command, kind, parentID string) (map[string]string, error) {
	c := openCache(cmd)
	if c != nil {
		if items := c.LoadList(kind, parentID); items != nil {
			return items, nil
		}
	}
	if FlagOffline {
		return nil, fmt.Errorf("no cached %s list; drop --offline", kind)
	}

	ctx := cmd.Context()
	client := newClient()

	var (
		items map[string]string
		err   error
	)
	switch kind {
	case cache.Countries:
		items, err = client.FetchCountries(ctx)
	case cache.Cities:
		items, err = client.FetchCities(ctx, parentID)
	case cache.Districts:
		items, err = client.FetchDistricts(ctx, parentID)
	default:
		return nil, fmt.Errorf("unknown list kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %w", countdown.StatusNetworkError, err)
	}

	if c != nil {
		saveList(cmd, c, kind, parentID, items)
	}
	return items, nil
}

func saveList(cmd *cobra.Command, c *cache.Cache, kind, parentID string, items map[string]string) {
	if err := c.SaveList(kind, parentID, items); err != nil {
		warnf(cmd, "cache write failed: %v", err)
	}
}

// openCache returns nil, with a warning, when the cache cannot be used.
func openCache(cmd *cobra.Command) *cache.Cache {
	c, err := cache.New(cacheDir(cmd))
	if err != nil {
		warnf(cmd, "cache disabled: %v", err)
		return nil
	}
	return c
}

// keepLists saves lookup lists into the document. Failure only costs a
// future API call.
func keepLists(cmd *cobra.Command) {
	if err := saveConfig(cmd); err != nil {
		warnf(cmd, "%s %v", countdown.StatusSaveFailed, err)
	}
}

// pick resolves query against a name -> id list, first as an id and then as
// a name.
func pick(items map[string]string, kind, query string) (name, id string, err error) {
	for n, i := range items {
		if i == query {
			return n, i, nil
		}
	}
	if n, ok := geo.MatchName(items, query); ok {
		return n, items[n], nil
	}
	return "", "", fmt.Errorf("no %s matches %q", kind, query)
}

// placeIndex matches places by their local or English name and answers with
// the local one.
type placeIndex struct {
	names map[string]string // local or English name -> id
	local map[string]string // local name -> id
	byID  map[string]string // id -> local name
}

func newPlaceIndex() *placeIndex {
	return &placeIndex{
		names: make(map[string]string),
		local: make(map[string]string),
		byID:  make(map[string]string),
	}
}

func (p *placeIndex) add(name, english, id string) {
	p.names[name] = id
	p.local[name] = id
	p.byID[id] = name
	// Skip English names that only differ by accents; they would turn a
	// unique prefix match into two hits for the same place.
	if english != "" && geo.Fold(english) != geo.Fold(name) {
		p.names[english] = id
	}
}

func (p *placeIndex) match(names ...string) (name, id string, ok bool) {
	key, ok := geo.MatchName(p.names, names...)
	if !ok {
		return "", "", false
	}
	id = p.names[key]
	return p.byID[id], id, true
}

// placeJSON is one entry of the countries, cities and districts output.
type placeJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// printPlaces prints a name -> id list sorted by name.
func printPlaces(w io.Writer, title string, items map[string]string) error {
	names := make([]string, 0, len(items))
	for n := range items {
		names = append(names, n)
	}
	sort.Strings(names)

	if FlagJSON {
		out := make([]placeJSON, 0, len(names))
		for _, n := range names {
			out = append(out, placeJSON{ID: items[n], Name: n})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	tbl := display.NewTable([]string{"ID", title})
	for _, n := range names {
		tbl.AddRow([]string{items[n], n})
	}
	fmt.Fprint(w, tbl.Render())
	return nil
}
