package resource

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

var now = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func TestRegistryMenuOrder(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"users", "devkits", "subscriptions", "partners", "customers", "repositories",
		"db-dumps", "network-settings", "scan-schedulers", "scan-sessions",
		"discovery-code", "discovery-database", "discovery-network",
	}, r.Names())

	menu := r.Menu("/console")
	require.Len(t, menu, 13)
	assert.Equal(t, "/console/db-dumps", menu[6].Href)
	assert.Equal(t, "DB Dumps", menu[6].Title)
}

func TestRegistryLookup(t *testing.T) {
	r := MustRegistry()

	s, ok := r.Lookup("scan-sessions")
	require.True(t, ok)
	assert.Equal(t, "scan", s.Collection)

	_, ok = r.Lookup("vault")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := newRegistry(Partners(), Partners())
	assert.True(t, errors.Is(err, console.ErrInvalidSchema))
}

func TestSchemasListEveryCollection(t *testing.T) {
	want := map[string]bool{
		"partners": true, "customers": true, "devkits": true, "repositories": true,
		"db-dumps": true, "network-scan-settings": true, "scan-schedulers": true, "scan": true,
		"discovery-list-code": true, "discovery-list-database": true, "discovery-list-network": true,
		"users": true, "subscriptions": true,
	}
	got := make(map[string]bool)
	for _, s := range MustRegistry().All() {
		got[s.Collection] = true
		last := s.Columns[len(s.Columns)-1]
		assert.True(t, last.Actions, "%s ends with the actions column", s.Name)
		for _, c := range s.Columns {
			f, ok := s.Field(c.Key)
			if ok {
				assert.False(t, f.CreateOnly, "%s lists relationship column %s", s.Name, c.Key)
				assert.NotEqual(t, console.KindPassword, f.Kind, "%s lists password column", s.Name)
			}
		}
	}
	assert.Equal(t, want, got)
}

func TestPartnerHeaders(t *testing.T) {
	var headers []string
	for _, c := range Partners().Columns {
		headers = append(headers, c.Header)
	}
	assert.Equal(t, []string{
		"Company Name", "City", "Address", "Contact Person Name", "Contact Email",
		"Contact Mobile Number", "Company Website", "Creation Time", "Last Update Time", "Actions",
	}, headers)
}

func TestDbDumpPayload(t *testing.T) {
	s := DbDumps()
	item := console.Record{"id": "d1", "createdAt": "2023-03-03T03:03:03.000Z", "customerId": "c1"}
	values := console.Values{
		"contentDescription": "orders",
		"industry":           "Retail",
		"rows":               "10000",
		"sizeKb":             "2048",
		"filePath":           "s3://dumps/a.sql",
	}

	got := console.BuildPayload(s, console.ModeEdit, values, item, now)
	assert.Equal(t, map[string]any{
		"contentDescription": "orders",
		"industry":           "Retail",
		"rows":               float64(10000),
		"sizeKb":             float64(2048),
		"filePath":           "s3://dumps/a.sql",
		"createdAt":          "2023-03-03T03:03:03.000Z",
		"updatedAt":          "2024-05-01T10:30:00.000Z",
	}, got)
}

func TestDevkitComplianceList(t *testing.T) {
	s := Devkits()
	values := console.Defaults(s, now)
	values["supportedCompliance"] = "ISO27001, SOC2 ,"

	got := console.BuildPayload(s, console.ModeCreate, values, nil, now)
	assert.Equal(t, []string{"ISO27001", "SOC2"}, got["supportedCompliance"])
}

func TestScanSchedulerDefaults(t *testing.T) {
	s := ScanSchedulers()
	d := console.Defaults(s, now)

	assert.Equal(t, "repository", d["scanTargetType"])
	assert.Equal(t, "15_minutes", d["scanInterval"])
	assert.Equal(t, "2024-05-01T10:45", d["nextScanAt"])
	assert.Equal(t, "2024-05-01T10:30", d["lastScanAt"])

	d["nextScanAt"] = ""
	got := console.BuildPayload(s, console.ModeCreate, d, nil, now)
	assert.Equal(t, "2024-05-01T10:30:00.000Z", got["nextScanAt"])
	assert.Equal(t, "2024-05-01T10:30", got["lastScanAt"])
}

func TestSubscriptionDefaults(t *testing.T) {
	d := console.Defaults(Subscriptions(), now)
	assert.Equal(t, "basic", d["subscriptionPlan"])
	assert.Equal(t, "2024-05-01T10:30", d["subscribedAt"])
	assert.Equal(t, "2024-05-01T10:30", d["expiresAt"])
}

func TestScanSessionRelationshipsAreCreateOnly(t *testing.T) {
	s := ScanSessions()
	assert.ElementsMatch(t, []string{
		"repositories", "network-scan-settings", "db-dumps", "users", "scan-schedulers", "customers",
	}, s.SideFetches())

	for _, f := range s.VisibleFields(console.ModeEdit) {
		assert.Nil(t, f.OptionsFrom, "%s is hidden when editing", f.Key)
	}
}

func TestUserValidation(t *testing.T) {
	v := validator.New()
	s := Users()
	fetched := map[string][]console.Option{
		"customer_id": {{Value: "c1"}},
		"partner_id":  {{Value: "p1"}},
	}
	values := console.Values{
		"name": "Ada", "email": "ada@example.com", "password": "pw", "role": "admin",
		"customer_id": "c1", "partner_id": "p1",
	}
	require.NoError(t, console.ValidateValues(v, s, console.ModeCreate, values, fetched))

	values["role"] = "root"
	values["password"] = ""
	err := console.ValidateValues(v, s, console.ModeCreate, values, fetched)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, map[string]string{
		"password": validator.RequiredMessage,
		"role":     "Select one of the listed options.",
	}, verrs.ByField())

	assert.NoError(t, console.ValidateValues(v, s, console.ModeEdit, console.Values{
		"name": "Ada", "email": "ada@example.com", "role": "demo",
	}, fetched))
}

func TestNetworkFindingValidation(t *testing.T) {
	v := validator.New()
	s := DiscoveryNetwork()
	values := console.Defaults(s, now)
	for k, val := range map[string]string{
		"scanSessionId": "s1", "discoveryType": "weak_tls", "severity": "high", "description": "TLS 1.0",
		"sourceIp": "10.0.0.1", "destinationIp": "10.0.0.300", "sourcePort": "443", "destinationPort": "8443",
		"protocol": "tcp", "cryptographyComment": "legacy", "vulnerableAlgorithms": "RSA",
		"pqcAlgorithms": "none",
	} {
		values[k] = val
	}

	err := console.ValidateValues(v, s, console.ModeCreate, values, nil)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, map[string]string{"destinationIp": "Must be a valid IP address."}, verrs.ByField())
}
