package catalog

import (
	"fmt"
	"strings"
	"time"

	"agro-advisory/internal/models"
)

// Catalog is the immutable in-memory advisory dataset: the crop-calendar
// rule list, the district registry, crop guidance and market prices. It
// is built once at process start and read-only afterwards, so it can be
// shared across concurrent requests without coordination.
type Catalog struct {
	rules         []*models.AdvisoryRule
	districts     map[string]*models.District
	districtOrder []string
	guidance      map[string]*models.CropGuidance
	prices        map[string]*models.MarketPrice
	priceOrder    []string
}

// New validates every entry and assembles the catalog. A malformed rule
// or district aborts construction; per-request evaluation never has to
// re-check the schema.
func New(
	rules []*models.AdvisoryRule,
	districts []*models.District,
	guidance []*models.CropGuidance,
	prices []*models.MarketPrice,
) (*Catalog, error) {
	c := &Catalog{
		districts: make(map[string]*models.District, len(districts)),
		guidance:  make(map[string]*models.CropGuidance, len(guidance)),
		prices:    make(map[string]*models.MarketPrice, len(prices)),
	}

	for i, district := range districts {
		if district.Name == "" {
			return nil, &models.ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("district %d: name is required", i),
			}
		}
		key := strings.ToLower(district.Name)
		if _, exists := c.districts[key]; exists {
			return nil, &models.ValidationError{
				Field:   "name",
				Value:   district.Name,
				Message: fmt.Sprintf("duplicate district %q", district.Name),
			}
		}
		c.districts[key] = district
		c.districtOrder = append(c.districtOrder, key)
	}

	for i, rule := range rules {
		if err := validateRule(i, rule); err != nil {
			return nil, err
		}
		// Matching is on the lowercased district identifier.
		rule.District = strings.ToLower(rule.District)
		c.rules = append(c.rules, rule)
	}

	for _, g := range guidance {
		c.guidance[g.Crop] = g
	}

	for _, p := range prices {
		c.prices[p.Crop] = p
		c.priceOrder = append(c.priceOrder, p.Crop)
	}

	return c, nil
}

// Rules returns the catalog rules in load order. The engine iterates
// this order and fired alerts preserve it.
func (c *Catalog) Rules() []*models.AdvisoryRule {
	return c.rules
}

// District resolves a district by name, case-insensitively.
func (c *Catalog) District(name string) (*models.District, bool) {
	district, ok := c.districts[strings.ToLower(name)]
	return district, ok
}

// Districts returns the registry in load order.
func (c *Catalog) Districts() []*models.District {
	out := make([]*models.District, 0, len(c.districtOrder))
	for _, key := range c.districtOrder {
		out = append(out, c.districts[key])
	}
	return out
}

// Guidance returns the static guidance for a crop, if any.
func (c *Catalog) Guidance(crop string) (*models.CropGuidance, bool) {
	g, ok := c.guidance[crop]
	return g, ok
}

// Price returns the market price entry for a crop, if any.
func (c *Catalog) Price(crop string) (*models.MarketPrice, bool) {
	p, ok := c.prices[crop]
	return p, ok
}

// Prices returns all market price entries in load order.
func (c *Catalog) Prices() []*models.MarketPrice {
	out := make([]*models.MarketPrice, 0, len(c.priceOrder))
	for _, crop := range c.priceOrder {
		out = append(out, c.prices[crop])
	}
	return out
}

// validateRule enforces the catalog schema at load time. The date
// window check rejects windows where start sorts after end: the engine
// compares "MM-DD" strings lexicographically, which is only calendar
// ordering for windows that stay within one year.
func validateRule(index int, rule *models.AdvisoryRule) error {
	if rule.Crop == "" {
		return ruleError(index, "crop", rule.Crop, "crop is required")
	}
	if rule.District == "" {
		return ruleError(index, "district", rule.District, "district is required (use \"all\" for a wildcard)")
	}
	if rule.Title == "" {
		return ruleError(index, "title", rule.Title, "title is required")
	}
	if len(rule.Conditions) == 0 {
		return ruleError(index, "weather_conditions", "", "at least one weather condition is required")
	}

	if err := validateMonthDay(rule.StartDate); err != nil {
		return ruleError(index, "start_date", rule.StartDate, err.Error())
	}
	if err := validateMonthDay(rule.EndDate); err != nil {
		return ruleError(index, "end_date", rule.EndDate, err.Error())
	}
	if rule.StartDate > rule.EndDate {
		return ruleError(index, "start_date", rule.StartDate,
			fmt.Sprintf("window %s..%s crosses a year boundary, which is not supported", rule.StartDate, rule.EndDate))
	}

	return nil
}

// validateMonthDay checks for a zero-padded "MM-DD" calendar date.
func validateMonthDay(value string) error {
	if len(value) != 5 {
		return fmt.Errorf("expected MM-DD, got %q", value)
	}
	if _, err := time.Parse("01-02", value); err != nil {
		return fmt.Errorf("expected MM-DD, got %q", value)
	}
	return nil
}

func ruleError(index int, field, value, message string) error {
	return &models.ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("rule %d: %s", index, message),
	}
}
