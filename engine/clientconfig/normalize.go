package clientconfig

import (
	"fmt"
	"slices"
	"strings"
)

// NormalizationResult is the canonical form of a configuration plus the corrections made.
type NormalizationResult struct {
	Config    ClientConfiguration
	Overrides []Override
}

// Normalize canonicalizes a configuration. It is idempotent: normalizing the
// output again yields the same configuration and no overrides.
func Normalize(cfg ClientConfiguration) NormalizationResult {
	out := cfg.Clone()
	var overrides []Override

	out.Client.Name = strings.TrimSpace(out.Client.Name)
	out.Client.Website = strings.TrimSpace(out.Client.Website)
	out.Client.Address = strings.TrimSpace(out.Client.Address)
	out.Client.Timezone = strings.TrimSpace(out.Client.Timezone)
	if out.Client.Timezone == "" {
		out.Client.Timezone = DefaultTimezone
	}
	out.Client.Phones = trimNonBlank(out.Client.Phones)
	out.Client.Hours = normalizeHours(out.Client.Hours)

	if out.People.Managers == nil {
		out.People.Managers = []Manager{}
	}
	for i := range out.People.Managers {
		out.People.Managers[i].Name = strings.TrimSpace(out.People.Managers[i].Name)
		out.People.Managers[i].Email = strings.TrimSpace(out.People.Managers[i].Email)
	}

	if out.Suppliers == nil {
		out.Suppliers = []Supplier{}
	}
	for i := range out.Suppliers {
		out.Suppliers[i].Name = strings.TrimSpace(out.Suppliers[i].Name)
		out.Suppliers[i].Domains = normalizeDomains(out.Suppliers[i].Domains)
	}

	var labelOverrides []Override
	out.Channels.Email.LabelMap, labelOverrides = normalizeLabelMap(out.Channels.Email.LabelMap)
	overrides = append(overrides, labelOverrides...)

	if out.Signature.CustomText != nil {
		out.Signature.CustomText = StringPtr(strings.TrimSpace(*out.Signature.CustomText))
	}
	out.AI.Model = strings.TrimSpace(out.AI.Model)

	return NormalizationResult{Config: out, Overrides: overrides}
}

// normalizeHours trims days and ranges. When several keys trim to the same day,
// an already-trimmed key wins, otherwise the lexically smallest raw key.
func normalizeHours(in map[string]string) map[string]string {
	days := make([]string, 0, len(in))
	for day := range in {
		days = append(days, day)
	}
	slices.SortFunc(days, func(a, b string) int {
		aTrimmed, bTrimmed := a == strings.TrimSpace(a), b == strings.TrimSpace(b)
		if aTrimmed != bTrimmed {
			if aTrimmed {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	out := make(map[string]string, len(in))
	for _, day := range days {
		key := strings.TrimSpace(day)
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = strings.TrimSpace(in[day])
	}
	return out
}

func trimNonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalizeDomains lowercases, trims and deduplicates while keeping first-seen order.
func normalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// normalizeLabelMap trims entries and keeps only the first category that points
// at a given label, so no two categories share a mailbox label.
func normalizeLabelMap(in LabelMap) (LabelMap, []Override) {
	out := make(LabelMap, 0, len(in))
	var overrides []Override
	owner := make(map[string]string, len(in))
	for _, e := range in {
		category := strings.TrimSpace(e.Category)
		label := strings.TrimSpace(e.Label)
		if _, ok := out.Get(category); ok {
			overrides = append(overrides, Override{
				Field:  "channels.email.label_map." + category,
				Reason: "duplicate category dropped",
			})
			continue
		}
		if first, ok := owner[label]; ok {
			overrides = append(overrides, Override{
				Field:  "channels.email.label_map." + category,
				Reason: fmt.Sprintf("label %q already used by %s", label, first),
			})
			continue
		}
		owner[label] = category
		out = append(out, LabelEntry{Category: category, Label: label})
	}
	return out, overrides
}
