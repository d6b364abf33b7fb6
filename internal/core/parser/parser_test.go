package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestParsePersonFixture(t *testing.T) {
	rec, err := ParsePerson(readFixture(t, "cpf_report.txt"))
	require.NoError(t, err)

	assert.Equal(t, domain.BasicData{
		Name:                   "Ana Costa",
		CPF:                    "52998224725",
		CNS:                    "708004816512345",
		BirthDate:              "14/03/1987",
		Sex:                    "Feminino",
		MotherName:             "Maria Aparecida Costa",
		FatherName:             "José Roberto Costa",
		RegistrationStatus:     "REGULAR",
		RegistrationStatusDate: "02/09/2019",
	}, rec.Basic)
	assert.Equal(t, domain.EconomicData{
		Income:         "R$ 4.250,00",
		PurchasingTier: "MEDIO",
		IncomeBracket:  "3 a 5 SM",
		Score:          "712",
	}, rec.Economic)
	assert.Equal(t, domain.ImportantInfo{CPFValid: "Sim", Death: "Não", PEP: "Não"}, rec.Flags)

	require.Len(t, rec.Addresses, 2)
	assert.Equal(t, domain.Address{
		Street:       "RUA DAS PALMEIRAS, 120",
		Neighborhood: "JARDIM AMERICA",
		CityState:    "CUIABA/MT",
		PostalCode:   "78060000",
	}, rec.Addresses[0])
	assert.Equal(t, "BOSQUE DA SAUDE", rec.Addresses[1].Neighborhood)
}

func TestParsePersonMinimalDocument(t *testing.T) {
	rec, err := ParsePerson("• Nome: Ana Costa\n• CPF: 52998224725\n")
	require.NoError(t, err)

	assert.Equal(t, "Ana Costa", rec.Basic.Name)
	assert.Equal(t, "52998224725", rec.Basic.CPF)
	assert.Empty(t, rec.Basic.MotherName)
	assert.Equal(t, domain.EconomicData{}, rec.Economic)
	assert.NotNil(t, rec.Addresses)
	assert.Empty(t, rec.Addresses)
}

func TestParsePersonSkipsEmptyAddressBlocks(t *testing.T) {
	report := "• Nome: X\n🏠 ENDEREÇO 1\nsem dados\n🏠 ENDEREÇO 2\n  • CEP:78060000\n"
	rec, err := ParsePerson(report)
	require.NoError(t, err)

	require.Len(t, rec.Addresses, 1)
	assert.Equal(t, domain.Address{PostalCode: "78060000"}, rec.Addresses[0])
}

func TestParsePersonLabelsDoNotBleed(t *testing.T) {
	rec, err := ParsePerson("• CPF Válido: Sim\n• Nome da Mãe: Maria\n")
	require.NoError(t, err)

	assert.Empty(t, rec.Basic.CPF, "CPF Válido must not satisfy the CPF label")
	assert.Empty(t, rec.Basic.Name, "Nome da Mãe must not satisfy the Nome label")
	assert.Equal(t, "Sim", rec.Flags.CPFValid)
	assert.Equal(t, "Maria", rec.Basic.MotherName)
}

func TestParsePersonEmptyValueFallsThrough(t *testing.T) {
	rec, err := ParsePerson("• Nome:   \n• Nome: Segunda Linha\n• CPF: não informado\n")
	require.NoError(t, err)

	assert.Equal(t, "Segunda Linha", rec.Basic.Name)
	assert.Empty(t, rec.Basic.CPF)
}

func TestParseNameResultsFixture(t *testing.T) {
	got, err := ParseNameResults(readFixture(t, "nome_report.txt"))
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, domain.PersonSummary{
		CPF:                "52998224725",
		Name:               "ANA COSTA",
		BirthDate:          "14/03/1987",
		MotherName:         "MARIA APARECIDA COSTA",
		RegistrationStatus: "REGULAR",
		Street:             "RUA DAS PALMEIRAS, 120",
		Neighborhood:       "JARDIM AMERICA",
		PostalCode:         "78060000",
	}, got[0])
	assert.Equal(t, "01234567890", got[1].CPF, "leading zeros are preserved")
	assert.Equal(t, "SUSPENSA", got[1].RegistrationStatus)
	assert.Equal(t, domain.PersonSummary{Name: "ANA MARIA COSTA"}, got[2])
}

func TestParsePhoneResultsFixture(t *testing.T) {
	got, err := ParsePhoneResults(readFixture(t, "numero_report.txt"))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, domain.PersonSummary{
		CPFCNPJ:      "529.982.247-25",
		Name:         "ANA COSTA",
		BirthDate:    "14/03/1987",
		Neighborhood: "JARDIM AMERICA",
		CityState:    "CUIABA/MT",
		PostalCode:   "78060000",
	}, got[0])
	assert.Equal(t, "COSTA COMERCIO LTDA", got[1].Name)
	assert.Equal(t, "78110", got[1].PostalCode)
}

func TestListParsersWithoutMarkersReturnEmpty(t *testing.T) {
	for name, parse := range map[string]func(string) ([]domain.PersonSummary, error){
		"nome":   ParseNameResults,
		"numero": ParsePhoneResults,
	} {
		got, err := parse("Nenhum registro encontrado para o termo informado.")
		require.NoError(t, err, name)
		assert.NotNil(t, got, name)
		assert.Empty(t, got, name)
	}
}

func TestParsersRejectEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \n\t "} {
		_, err := ParsePerson(in)
		assertInvalidResponse(t, err, in)

		_, err = ParseNameResults(in)
		assertInvalidResponse(t, err, in)

		_, err = ParsePhoneResults(in)
		assertInvalidResponse(t, err, in)
	}
}

func TestParsersAreTotal(t *testing.T) {
	inputs := []string{
		"👤 RESULTADO",
		"👤 PESSOA👤 PESSOA👤 PESSOA",
		"🏠 ENDEREÇO\n• CEP:",
		"• CPF:",
		"\x00\xff\xfe garbage ::: • : •",
		"• Nome: " + string(make([]byte, 4096)),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, _ = ParsePerson(in)
			_, _ = ParseNameResults(in)
			_, _ = ParsePhoneResults(in)
		})
	}

	got, err := ParseNameResults("👤 RESULTADO")
	require.NoError(t, err)
	assert.Equal(t, []domain.PersonSummary{{}}, got)
}

func assertInvalidResponse(t *testing.T, err error, in string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidResponse))

	var ire *InvalidResponseError
	require.True(t, errors.As(err, &ire))
	assert.Equal(t, in, ire.Text)
}
