package parser

import "github.com/atvirokodosprendimai/mutanox/internal/core/domain"

// ParseNameResults normalizes the identity-by-name report. Every result block
// yields one summary, even when no label inside it matched.
func ParseNameResults(report string) ([]domain.PersonSummary, error) {
	if err := checkText(report); err != nil {
		return nil, err
	}

	blocks := sections(report, markerResult)
	out := make([]domain.PersonSummary, 0, len(blocks))
	for _, section := range blocks {
		var p domain.PersonSummary
		fill(section, []binding{
			{digits(labelCPF), &p.CPF},
			{text(labelName), &p.Name},
			{text(labelBirthDate), &p.BirthDate},
			{text(labelMotherName), &p.MotherName},
			{text(labelRegistrationStatus), &p.RegistrationStatus},
			{text(labelStreet), &p.Street},
			{text(labelNeighborhood), &p.Neighborhood},
			{digits(labelPostalCode), &p.PostalCode},
		})
		out = append(out, p)
	}
	return out, nil
}

// ParsePhoneResults normalizes the identity-by-phone report.
func ParsePhoneResults(report string) ([]domain.PersonSummary, error) {
	if err := checkText(report); err != nil {
		return nil, err
	}

	blocks := sections(report, markerPerson)
	out := make([]domain.PersonSummary, 0, len(blocks))
	for _, section := range blocks {
		var p domain.PersonSummary
		fill(section, []binding{
			{text(labelCPFCNPJ), &p.CPFCNPJ},
			{text(labelName), &p.Name},
			{text(labelBirthDate), &p.BirthDate},
			{text(labelNeighborhood), &p.Neighborhood},
			{text(labelCityState), &p.CityState},
			{digits(labelPostalCode), &p.PostalCode},
		})
		out = append(out, p)
	}
	return out, nil
}
