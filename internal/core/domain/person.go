package domain

// PersonRecord is the normalized identity-by-id report. Every field is
// optional and left empty when the provider text does not carry it.
type PersonRecord struct {
	Basic     BasicData     `json:"dadosBasicos"`
	Economic  EconomicData  `json:"dadosEconomicos"`
	Addresses []Address     `json:"enderecos"`
	Flags     ImportantInfo `json:"informacoesImportantes"`
}

type BasicData struct {
	Name                   string `json:"nome,omitempty"`
	CPF                    string `json:"cpf,omitempty"`
	CNS                    string `json:"cns,omitempty"`
	BirthDate              string `json:"dataNascimento,omitempty"`
	Sex                    string `json:"sexo,omitempty"`
	MotherName             string `json:"nomeMae,omitempty"`
	FatherName             string `json:"nomePai,omitempty"`
	RegistrationStatus     string `json:"situacaoCadastral,omitempty"`
	RegistrationStatusDate string `json:"dataSituacao,omitempty"`
}

type EconomicData struct {
	Income         string `json:"renda,omitempty"`
	PurchasingTier string `json:"poderAquisitivo,omitempty"`
	IncomeBracket  string `json:"faixaRenda,omitempty"`
	Score          string `json:"scoreCSBA,omitempty"`
}

type Address struct {
	Street       string `json:"logradouro,omitempty"`
	Neighborhood string `json:"bairro,omitempty"`
	CityState    string `json:"cidadeUF,omitempty"`
	PostalCode   string `json:"cep,omitempty"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

type ImportantInfo struct {
	CPFValid string `json:"cpfValido,omitempty"`
	Death    string `json:"obito,omitempty"`
	PEP      string `json:"pep,omitempty"`
}

// PersonSummary is one entry of a name or phone search.
type PersonSummary struct {
	CPF                string `json:"cpf,omitempty"`
	CPFCNPJ            string `json:"cpfCnpj,omitempty"`
	Name               string `json:"nome,omitempty"`
	BirthDate          string `json:"dataNascimento,omitempty"`
	MotherName         string `json:"nomeMae,omitempty"`
	RegistrationStatus string `json:"situacaoCadastral,omitempty"`
	Street             string `json:"logradouro,omitempty"`
	Neighborhood       string `json:"bairro,omitempty"`
	CityState          string `json:"cidadeUF,omitempty"`
	PostalCode         string `json:"cep,omitempty"`
}
