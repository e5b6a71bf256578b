package countries

import (
	"context"
)

const continentOfCountryQuery = `
	query ($code: ID!) {
		country(code: $code) {
			continent {
				countries {
					code
					name
				}
			}
		}
	}
`

const countriesOfContinentQuery = `
	query ($code: String!) {
		countries(filter: { continent: { eq: $code } }) {
			code
			name
		}
	}
`

// ContinentOfCountry returns every country sharing a continent with the country identified by code,
// the country itself included. It returns ErrNotFound when the upstream knows no such country.
func (c *Controller) ContinentOfCountry(ctx context.Context, code string) ([]Country, error) {
	var data struct {
		Country *struct {
			Continent struct {
				Countries []Country `json:"countries"`
			} `json:"continent"`
		} `json:"country"`
	}
	if err := c.Query(ctx, continentOfCountryQuery, map[string]any{"code": code}, &data); err != nil {
		return nil, err
	}
	if data.Country == nil {
		return nil, ErrNotFound
	}
	return data.Country.Continent.Countries, nil
}

// CountriesOfContinent returns the countries of the continent identified by code.
// It returns ErrNotFound when the upstream lists none.
func (c *Controller) CountriesOfContinent(ctx context.Context, code string) ([]Country, error) {
	var data struct {
		Countries []Country `json:"countries"`
	}
	if err := c.Query(ctx, countriesOfContinentQuery, map[string]any{"code": code}, &data); err != nil {
		return nil, err
	}
	if len(data.Countries) == 0 {
		return nil, ErrNotFound
	}
	return data.Countries, nil
}
