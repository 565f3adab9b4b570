package provisioning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docWithVers = `<wap-provisioningdoc version="1.1">
    <characteristic type="VERS">
        <parm name="version" value="2"/>
        <parm name="validity" value="172800"/>
    </characteristic>
    <characteristic type="TOKEN">
        <parm name="token" value="kZYfCEpSsMr88KZVmab5UsZVzl+nWSsX"/>
    </characteristic>
    <characteristic type="APPLICATION">
        <parm name="AppID" value="ap2004"/>
        <parm name="EntitlementStatus" value="0"/>
        <parm name="ServiceFlow_URL" value="https://entitlement.example/wfc"/>
        <parm name="ServiceFlow_UserData" value="token=abc"/>
        <parm name="AddrStatus" value="0"/>
        <parm name="TC_Status" value="1"/>
        <parm name="ProvStatus" value="2"/>
    </characteristic>
</wap-provisioningdoc>`

const docWithoutVers = `<wap-provisioningdoc version="1.1">
    <characteristic type="APPLICATION">
        <parm name="AppID" value="ap2004"/>
        <parm name="EntitlementStatus" value="1"/>
    </characteristic>
</wap-provisioningdoc>`

const docServerDisabled = `<wap-provisioningdoc version="1.1">
    <characteristic type="VERS">
        <parm name="version" value="-1"/>
        <parm name="validity" value="-1"/>
    </characteristic>
</wap-provisioningdoc>`

func TestParse(t *testing.T) {
	t.Run("reads vers and application", func(t *testing.T) {
		doc, err := Parse(docWithVers)
		require.NoError(t, err)

		vers, ok := doc.Vers()
		require.True(t, ok)
		assert.Equal(t, 2, vers.Version)
		assert.Equal(t, 48*time.Hour, vers.Validity)

		app, ok := doc.Application(AppIDVoWiFi)
		require.True(t, ok)
		assert.Equal(t, StatusDisabled, app.EntitlementStatus)
		assert.Equal(t, "https://entitlement.example/wfc", app.ServiceFlowURL)
		assert.Equal(t, "token=abc", app.ServiceFlowUserData)
		assert.Equal(t, "0", app.AddrStatus)
		assert.Equal(t, "1", app.TCStatus)
		assert.Equal(t, "2", app.ProvStatus)
		assert.Len(t, doc.Applications(), 1)
	})

	t.Run("missing vers is not an error", func(t *testing.T) {
		doc, err := Parse(docWithoutVers)
		require.NoError(t, err)
		_, ok := doc.Vers()
		assert.False(t, ok)
	})

	t.Run("nested characteristics are found", func(t *testing.T) {
		doc, err := Parse(`<wap-provisioningdoc><characteristic type="APPLICATION_LIST">` +
			`<characteristic type="APPLICATION"><parm name="appid" value="AP2004"/>` +
			`<parm name="entitlementstatus" value="1"/></characteristic></characteristic></wap-provisioningdoc>`)
		require.NoError(t, err)
		app, ok := doc.Application(AppIDVoWiFi)
		require.True(t, ok)
		assert.Equal(t, StatusEnabled, app.EntitlementStatus)
	})

	t.Run("syntax errors are reported", func(t *testing.T) {
		_, err := Parse("<wap-provisioningdoc><characteristic")
		require.Error(t, err)
	})

	t.Run("empty input is reported", func(t *testing.T) {
		_, err := Parse("  ")
		require.Error(t, err)
	})
}

func TestParseVers_ServerDisabled(t *testing.T) {
	vers, ok := ParseVers(docServerDisabled)
	require.True(t, ok)
	assert.True(t, vers.ServerDisabled())
	assert.Equal(t, time.Duration(0), vers.Validity)
}

func TestValidUntil(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "validity seconds from now", raw: docWithVers, want: now.Add(172800 * time.Second)},
		{name: "absent vers is expired", raw: docWithoutVers, want: now},
		{name: "negative validity is expired", raw: docServerDisabled, want: now},
		{name: "malformed xml is expired", raw: "<not-xml", want: now},
		{name: "non-numeric validity is expired", raw: `<wap-provisioningdoc><characteristic type="VERS"><parm name="version" value="2"/><parm name="validity" value="soon"/></characteristic></wap-provisioningdoc>`, want: now},
		{name: "empty payload is expired", raw: "", want: now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidUntil(tt.raw, now))
		})
	}
}

func TestEntitlementStatus_String(t *testing.T) {
	assert.Equal(t, "enabled", StatusEnabled.String())
	assert.Equal(t, "unknown", EntitlementStatus(42).String())
}

func FuzzValidUntil(f *testing.F) {
	f.Add(docWithVers)
	f.Add(docServerDisabled)
	f.Add("<")
	now := time.Unix(1_700_000_000, 0)
	f.Fuzz(func(t *testing.T, raw string) {
		if got := ValidUntil(raw, now); got.Before(now) {
			t.Errorf("validity moved before now: %v", got)
		}
	})
}
