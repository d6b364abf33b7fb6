package parser

import "github.com/atvirokodosprendimai/mutanox/internal/core/domain"

// ParsePerson normalizes the identity-by-id report. Top-level fields are
// read from the whole text; addresses come from the repeated address blocks.
func ParsePerson(report string) (domain.PersonRecord, error) {
	if err := checkText(report); err != nil {
		return domain.PersonRecord{}, err
	}

	rec := domain.PersonRecord{Addresses: []domain.Address{}}
	b, e, f := &rec.Basic, &rec.Economic, &rec.Flags
	fill(report, []binding{
		{digits(labelCPF), &b.CPF},
		{text(labelName), &b.Name},
		{digits(labelCNS), &b.CNS},
		{text(labelBirthDate), &b.BirthDate},
		{text(labelSex), &b.Sex},
		{text(labelMotherName), &b.MotherName},
		{text(labelFatherName), &b.FatherName},
		{text(labelRegistrationStatus), &b.RegistrationStatus},
		{text(labelStatusDate), &b.RegistrationStatusDate},
		{text(labelIncome), &e.Income},
		{text(labelPurchasingTier), &e.PurchasingTier},
		{text(labelIncomeBracket), &e.IncomeBracket},
		{text(labelScore), &e.Score},
		{text(labelCPFValid), &f.CPFValid},
		{text(labelDeath), &f.Death},
		{text(labelPEP), &f.PEP},
	})

	for _, section := range sections(report, markerAddress) {
		var a domain.Address
		found := fill(section, []binding{
			{text(labelStreet), &a.Street},
			{text(labelNeighborhood), &a.Neighborhood},
			{text(labelCityState), &a.CityState},
			{text(labelPostalCode), &a.PostalCode},
		})
		if found > 0 {
			rec.Addresses = append(rec.Addresses, a)
		}
	}

	return rec, nil
}
