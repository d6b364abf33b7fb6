package parser

const (
	markerAddress = "🏠 ENDEREÇO"
	markerResult  = "👤 RESULTADO"
	markerPerson  = "👤 PESSOA"
)

const (
	labelName               = "• Nome"
	labelCPF                = "• CPF"
	labelCNS                = "• CNS"
	labelBirthDate          = "• Data de Nascimento"
	labelSex                = "• Sexo"
	labelMotherName         = "• Nome da Mãe"
	labelFatherName         = "• Nome do Pai"
	labelRegistrationStatus = "• Situação Cadastral"
	labelStatusDate         = "• Data da Situação"
	labelIncome             = "• Renda"
	labelPurchasingTier     = "• Poder Aquisitivo"
	labelIncomeBracket      = "• Faixa de Renda"
	labelScore              = "• Score CSBA"
	labelStreet             = "• Logradouro"
	labelNeighborhood       = "• Bairro"
	labelCityState          = "• Cidade/UF"
	labelPostalCode         = "• CEP"
	labelCPFValid           = "• CPF Válido"
	labelDeath              = "• Óbito"
	labelPEP                = "• PEP"
	labelCPFCNPJ            = "• CPF/CNPJ"
)

func text(label string) field   { return field{label: label} }
func digits(label string) field { return field{label: label, digits: true} }
