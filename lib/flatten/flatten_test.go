package flatten

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFiling(t *testing.T) {
	input := []byte(`<Return><ReturnHeader><TaxYr>2022</TaxYr></ReturnHeader></Return>`)

	rec, err := Filing(input, "f.xml")
	require.NoError(t, err)
	require.Equal(t, Record{
		"fileName":           "f.xml",
		"ReturnHeader_TaxYr": "2022",
	}, rec)
}

func TestFilingStripsNamespaces(t *testing.T) {
	input := []byte(`<Return xmlns="http://www.irs.gov/efile">
		<ReturnHeader>
			<Filer>
				<EIN>043214567</EIN>
				<BusinessName>
					<BusinessNameLine1Txt>HARBOR LIGHT MISSION</BusinessNameLine1Txt>
				</BusinessName>
			</Filer>
		</ReturnHeader>
	</Return>`)

	rec, err := Filing(input, "202201_public.xml")
	require.NoError(t, err)
	require.Equal(t, "043214567", rec["ReturnHeader_Filer_EIN"])
	require.Equal(t, "HARBOR LIGHT MISSION", rec["ReturnHeader_Filer_BusinessName_BusinessNameLine1Txt"])
	require.Equal(t, "202201_public.xml", rec[FileNameKey])
}

func TestFilingLastSiblingWins(t *testing.T) {
	input := []byte(`<Return><Body><Amt>1</Amt><Amt>2</Amt></Body></Return>`)

	rec, err := Filing(input, "f.xml")
	require.NoError(t, err)
	require.Equal(t, "2", rec["Body_Amt"])
}

func TestFilingOmitsEmptyText(t *testing.T) {
	input := []byte(`<Return><Body><Empty></Empty><Blank>   </Blank><Kept>x</Kept></Body></Return>`)

	rec, err := Filing(input, "f.xml")
	require.NoError(t, err)
	require.NotContains(t, rec, "Body_Empty")
	require.NotContains(t, rec, "Body_Blank")
	require.Equal(t, "x", rec["Body_Kept"])
}

func TestFilingIgnoresNonLeafText(t *testing.T) {
	input := []byte(`<Return><Body>stray<Leaf>kept</Leaf></Body></Return>`)

	rec, err := Filing(input, "f.xml")
	require.NoError(t, err)
	require.NotContains(t, rec, "Body")
	require.Equal(t, "kept", rec["Body_Leaf"])
}

func TestFilingIdempotent(t *testing.T) {
	input := []byte(`<Return><ReturnHeader><TaxYr>2022</TaxYr><TaxPeriodEndDt>2022-12-31</TaxPeriodEndDt></ReturnHeader></Return>`)

	first, err := Filing(input, "f.xml")
	require.NoError(t, err)
	second, err := Filing(input, "f.xml")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestFilingLeafLookup(t *testing.T) {
	// with no key collisions, every leaf's accumulated path maps to its text
	input := []byte(`<Return>
		<A><B>one</B><C>two</C></A>
		<D>three</D>
	</Return>`)

	rec, err := Filing(input, "f.xml")
	require.NoError(t, err)
	expected := map[string]string{
		"A_B": "one",
		"A_C": "two",
		"D":   "three",
	}
	for k, v := range expected {
		require.Equal(t, v, rec[k])
	}
	require.Len(t, rec, len(expected)+1) // plus fileName
}

func TestFilingMalformed(t *testing.T) {
	_, err := Filing([]byte(`<Return><Unclosed>`), "broken.xml")
	require.Error(t, err)

	_, err = Filing(nil, "empty.xml")
	require.Error(t, err)
}
