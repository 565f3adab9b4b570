// Package provisioning reads the wap-provisioningdoc responses returned by a
// carrier entitlement server.
//
// Only two characteristic types matter to the engine: VERS, which carries the
// document version and how long it may be trusted, and APPLICATION, which carries
// the per-service entitlement status. Everything else is preserved verbatim in
// the stored payload and ignored here.
package provisioning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// AppIDVoWiFi identifies the Wi-Fi Calling application characteristic.
const AppIDVoWiFi = "ap2004"

// maxValidity caps what a server may claim so the expiry stays representable.
const maxValidity = 10 * 365 * 24 * time.Hour

const (
	characteristicVers        = "VERS"
	characteristicApplication = "APPLICATION"
)

// EntitlementStatus is the server's verdict for one application.
type EntitlementStatus int

// Entitlement statuses as defined by the entitlement protocol.
const (
	StatusDisabled     EntitlementStatus = 0
	StatusEnabled      EntitlementStatus = 1
	StatusIncompatible EntitlementStatus = 2
	StatusProvisioning EntitlementStatus = 3
	StatusUnknown      EntitlementStatus = -1
)

func (s EntitlementStatus) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusEnabled:
		return "enabled"
	case StatusIncompatible:
		return "incompatible"
	case StatusProvisioning:
		return "provisioning"
	default:
		return "unknown"
	}
}

// Vers is the VERS characteristic. A negative Version is the server telling the
// client it is disabled and should not ask again until something changes.
type Vers struct {
	Version  int
	Validity time.Duration
}

// ServerDisabled reports whether the server signalled a disable.
func (v Vers) ServerDisabled() bool {
	return v.Version < 0
}

// Application is one APPLICATION characteristic.
type Application struct {
	AppID                  string
	EntitlementStatus      EntitlementStatus
	ServiceFlowURL         string
	ServiceFlowUserData    string
	MessageForIncompatible string
	AddrStatus             string
	TCStatus               string
	ProvStatus             string
}

// Document is the parsed subset of a provisioning document.
type Document struct {
	vers         *Vers
	applications []Application
}

// Vers returns the VERS characteristic if present and well formed.
func (d *Document) Vers() (Vers, bool) {
	if d == nil || d.vers == nil {
		return Vers{}, false
	}
	return *d.vers, true
}

// Applications returns every APPLICATION characteristic in document order.
func (d *Document) Applications() []Application {
	if d == nil {
		return nil
	}
	return append([]Application(nil), d.applications...)
}

// Application returns the first APPLICATION characteristic for appID.
func (d *Document) Application(appID string) (Application, bool) {
	if d == nil {
		return Application{}, false
	}
	for _, app := range d.applications {
		if strings.EqualFold(app.AppID, appID) {
			return app, true
		}
	}
	return Application{}, false
}

// Parse reads raw as a provisioning document. Only XML syntax errors are
// reported; missing or malformed characteristics simply do not appear.
func Parse(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty provisioning document")
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, fmt.Errorf("parse provisioning document: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("provisioning document has no root element")
	}

	out := &Document{}
	for _, ch := range root.FindElements("//characteristic") {
		switch strings.ToUpper(ch.SelectAttrValue("type", "")) {
		case characteristicVers:
			if out.vers == nil {
				out.vers = parseVers(ch)
			}
		case characteristicApplication:
			out.applications = append(out.applications, parseApplication(ch))
		}
	}
	return out, nil
}

// ParseVers extracts the VERS characteristic, reporting false when raw is not
// a document or carries no usable VERS block.
func ParseVers(raw string) (Vers, bool) {
	doc, err := Parse(raw)
	if err != nil {
		return Vers{}, false
	}
	return doc.Vers()
}

// ValidUntil derives the absolute expiry of raw relative to now. An absent,
// malformed or negative validity yields now, i.e. already expired.
func ValidUntil(raw string, now time.Time) time.Time {
	vers, ok := ParseVers(raw)
	if !ok || vers.Validity <= 0 {
		return now
	}
	return now.Add(vers.Validity)
}

func parseVers(ch *etree.Element) *Vers {
	params := parms(ch)
	version, err := strconv.Atoi(params["version"])
	if err != nil {
		return nil
	}
	validity, err := strconv.ParseInt(params["validity"], 10, 64)
	if err != nil {
		return nil
	}
	d := time.Duration(0)
	switch {
	case validity <= 0:
	case validity >= int64(maxValidity/time.Second):
		d = maxValidity
	default:
		d = time.Duration(validity) * time.Second
	}
	return &Vers{Version: version, Validity: d}
}

func parseApplication(ch *etree.Element) Application {
	params := parms(ch)
	status := StatusUnknown
	if v, err := strconv.Atoi(params["entitlementstatus"]); err == nil {
		status = EntitlementStatus(v)
	}
	return Application{
		AppID:                  params["appid"],
		EntitlementStatus:      status,
		ServiceFlowURL:         params["serviceflow_url"],
		ServiceFlowUserData:    params["serviceflow_userdata"],
		MessageForIncompatible: params["messageforincompatible"],
		AddrStatus:             params["addrstatus"],
		TCStatus:               params["tc_status"],
		ProvStatus:             params["provstatus"],
	}
}

// parms collects direct parm children keyed by lower-cased name. Servers are
// not consistent about parameter name casing.
func parms(ch *etree.Element) map[string]string {
	out := make(map[string]string)
	for _, p := range ch.SelectElements("parm") {
		name := strings.ToLower(strings.TrimSpace(p.SelectAttrValue("name", "")))
		if name == "" {
			continue
		}
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = strings.TrimSpace(p.SelectAttrValue("value", ""))
	}
	return out
}
