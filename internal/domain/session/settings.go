package session

// OrgSettings is the per-organization settings snapshot. It is loaded once per
// resolution and immutable until the next one. Pointer-free on purpose: the
// merge below fills absent columns field by field, so a populated snapshot is
// always complete.
type OrgSettings struct {
	Currency           string `json:"currency"`
	Timezone           string `json:"timezone"`
	TaxRateBasisPoints int    `json:"tax_rate_bps"`
	TaxInclusive       bool   `json:"tax_inclusive"`
	ReceiptHeader      string `json:"receipt_header"`
	ReceiptFooter      string `json:"receipt_footer"`
	ShowLogoOnReceipt  bool   `json:"show_logo_on_receipt"`
	RequirePIN         bool   `json:"require_pin"`
	AllowNegativeStock bool   `json:"allow_negative_stock"`
	DefaultTipPercents []int  `json:"default_tip_percents"`
}

// OrgSettingsRow mirrors the nullable organization_settings columns. A nil
// field means the column was absent and the default applies.
type OrgSettingsRow struct {
	Currency           *string
	Timezone           *string
	TaxRateBasisPoints *int
	TaxInclusive       *bool
	ReceiptHeader      *string
	ReceiptFooter      *string
	ShowLogoOnReceipt  *bool
	RequirePIN         *bool
	AllowNegativeStock *bool
	DefaultTipPercents []int
}

// DefaultOrgSettings returns the settings applied when an organization has no
// settings record or individual columns are null.
func DefaultOrgSettings() OrgSettings {
	return OrgSettings{
		Currency:           "USD",
		Timezone:           "UTC",
		TaxRateBasisPoints: 0,
		TaxInclusive:       false,
		ReceiptHeader:      "",
		ReceiptFooter:      "",
		ShowLogoOnReceipt:  true,
		RequirePIN:         false,
		AllowNegativeStock: false,
		DefaultTipPercents: []int{15, 18, 20},
	}
}

// MergeOrgSettings overlays a settings row onto the defaults, field by field.
// A nil row yields the defaults unchanged; defaults are never synthesized
// wholesale when some columns are present.
func MergeOrgSettings(row *OrgSettingsRow) OrgSettings {
	out := DefaultOrgSettings()
	if row == nil {
		return out
	}
	if row.Currency != nil {
		out.Currency = *row.Currency
	}
	if row.Timezone != nil {
		out.Timezone = *row.Timezone
	}
	if row.TaxRateBasisPoints != nil {
		out.TaxRateBasisPoints = *row.TaxRateBasisPoints
	}
	if row.TaxInclusive != nil {
		out.TaxInclusive = *row.TaxInclusive
	}
	if row.ReceiptHeader != nil {
		out.ReceiptHeader = *row.ReceiptHeader
	}
	if row.ReceiptFooter != nil {
		out.ReceiptFooter = *row.ReceiptFooter
	}
	if row.ShowLogoOnReceipt != nil {
		out.ShowLogoOnReceipt = *row.ShowLogoOnReceipt
	}
	if row.RequirePIN != nil {
		out.RequirePIN = *row.RequirePIN
	}
	if row.AllowNegativeStock != nil {
		out.AllowNegativeStock = *row.AllowNegativeStock
	}
	if len(row.DefaultTipPercents) > 0 {
		out.DefaultTipPercents = append([]int(nil), row.DefaultTipPercents...)
	}
	return out
}
