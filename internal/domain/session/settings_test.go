package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeOrgSettings_NilRowYieldsDefaults(t *testing.T) {
	got := MergeOrgSettings(nil)
	assert.Equal(t, DefaultOrgSettings(), got)
}

func TestMergeOrgSettings_PerFieldOverlay(t *testing.T) {
	currency := "EUR"
	showLogo := false
	row := &OrgSettingsRow{
		Currency:          &currency,
		ShowLogoOnReceipt: &showLogo,
	}

	got := MergeOrgSettings(row)

	// Overridden fields.
	assert.Equal(t, "EUR", got.Currency)
	assert.False(t, got.ShowLogoOnReceipt)

	// Absent columns keep their defaults rather than zero values.
	assert.Equal(t, "UTC", got.Timezone)
	assert.Equal(t, []int{15, 18, 20}, got.DefaultTipPercents)
}

func TestMergeOrgSettings_FalseIsAValue(t *testing.T) {
	// An explicit false in a boolean column must not be confused with an
	// absent column whose default is true.
	explicit := false
	got := MergeOrgSettings(&OrgSettingsRow{ShowLogoOnReceipt: &explicit})
	assert.False(t, got.ShowLogoOnReceipt)
}

func TestMergeOrgSettings_CopiesTipSlice(t *testing.T) {
	tips := []int{10, 12}
	got := MergeOrgSettings(&OrgSettingsRow{DefaultTipPercents: tips})
	tips[0] = 99
	assert.Equal(t, []int{10, 12}, got.DefaultTipPercents)
}
