package resource

import (
	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
)

// Backend collections.
const (
	CollectionUsers             = "users"
	CollectionDevkits           = "devkits"
	CollectionSubscriptions     = "subscriptions"
	CollectionPartners          = "partners"
	CollectionCustomers         = "customers"
	CollectionRepositories      = "repositories"
	CollectionDbDumps           = "db-dumps"
	CollectionNetworkSettings   = "network-scan-settings"
	CollectionScanSchedulers    = "scan-schedulers"
	CollectionScanSessions      = "scan"
	CollectionDiscoveryCode     = "discovery-list-code"
	CollectionDiscoveryDatabase = "discovery-list-database"
	CollectionDiscoveryNetwork  = "discovery-list-network"
)

var (
	severityOptions = []console.Option{
		{Value: "low", Label: "Low"},
		{Value: "medium", Label: "Medium"},
		{Value: "high", Label: "High"},
		{Value: "critical", Label: "Critical"},
	}
	intervalOptions = []console.Option{
		{Value: "15_minutes", Label: "15 minutes"},
		{Value: "30_minutes", Label: "30 minutes"},
		{Value: "1_hour", Label: "1 hour"},
		{Value: "12_hours", Label: "12 hours"},
		{Value: "1_day", Label: "1 day"},
	}

	idColumn      = console.Column{Key: "id", Header: "ID"}
	createdColumn = console.Column{Key: "createdAt", Header: "Creation Time", Format: console.FormatDateTime}
	updatedColumn = console.Column{Key: "updatedAt", Header: "Last Update Time", Format: console.FormatDateTime}

	auditStamps = []console.Stamp{
		{Key: "createdAt", Kind: console.StampKeep},
		{Key: "updatedAt", Kind: console.StampNow},
	}
)

func required(key, label, placeholder string) console.Field {
	return console.Field{Key: key, Label: label, Kind: console.KindText, Placeholder: placeholder, Required: true}
}

func optional(key, label, placeholder string) console.Field {
	return console.Field{Key: key, Label: label, Kind: console.KindText, Placeholder: placeholder}
}

func number(key, label, placeholder string, req bool) console.Field {
	return console.Field{Key: key, Label: label, Kind: console.KindNumber, Placeholder: placeholder, Required: req}
}

func choice(key, label string, opts []console.Option, def string) console.Field {
	return console.Field{Key: key, Label: label, Kind: console.KindSelect, Required: true, Options: opts, Default: def}
}

// relation is a create-only selector filled from another collection.
func relation(key, label, collection, labelKey string, req bool) console.Field {
	return console.Field{
		Key:         key,
		Label:       label,
		Kind:        console.KindSelect,
		Required:    req,
		CreateOnly:  true,
		OptionsFrom: &console.OptionsSource{Collection: collection, LabelKey: labelKey},
	}
}

func withRules(f console.Field, rules string) console.Field {
	f.Rules = rules
	return f
}

// listColumns derives columns from the listed fields, then appends extra
// columns and the actions column. Create-only and password fields are not
// listed.
func listColumns(lead []console.Column, fields []console.Field, extra ...console.Column) []console.Column {
	cols := append([]console.Column(nil), lead...)
	seen := make(map[string]bool)
	for _, c := range cols {
		seen[c.Key] = true
	}
	for _, f := range fields {
		if f.CreateOnly || f.Kind == console.KindPassword || seen[f.Key] {
			continue
		}
		c := console.Column{Key: f.Key, Header: f.Label}
		if f.Kind == console.KindDatetime {
			c.Format = console.FormatDateTime
		}
		cols = append(cols, c)
		seen[f.Key] = true
	}
	for _, c := range extra {
		if !seen[c.Key] {
			cols = append(cols, c)
			seen[c.Key] = true
		}
	}
	return append(cols, console.ActionsColumn)
}

func partnerFields(namePlaceholder string) []console.Field {
	return []console.Field{
		required("name", "Name", namePlaceholder),
		required("city", "City", "City"),
		required("address", "Address", "Address"),
		required("primaryContact", "Primary Contact", "Primary Contact Number"),
		withRules(required("contactEmail", "Contact Email", "Contact Email"), "email"),
		required("contactPhone", "Contact Phone", "Alternate Phone"),
		withRules(required("website", "Website", "https://example.com"), "website"),
	}
}

// Partners lists reseller companies.
func Partners() *console.Schema {
	return &console.Schema{
		Name:       "partners",
		Title:      "Partners",
		Singular:   "Partner",
		Collection: CollectionPartners,
		Fields:     partnerFields("Partner name"),
		Columns: []console.Column{
			{Key: "name", Header: "Company Name"},
			{Key: "city", Header: "City"},
			{Key: "address", Header: "Address"},
			{Key: "primaryContact", Header: "Contact Person Name"},
			{Key: "contactEmail", Header: "Contact Email"},
			{Key: "contactPhone", Header: "Contact Mobile Number"},
			{Key: "website", Header: "Company Website", Format: console.FormatLink},
			createdColumn,
			updatedColumn,
			console.ActionsColumn,
		},
	}
}

// Customers lists end customers, each owned by a partner.
func Customers() *console.Schema {
	fields := partnerFields("Customer name")
	website := fields[len(fields)-1]
	fields = append(fields[:len(fields)-1],
		relation("partnerId", "Select Partner", CollectionPartners, "name", true),
		website,
	)
	cols := listColumns([]console.Column{idColumn}, fields, createdColumn, updatedColumn)
	for i := range cols {
		if cols[i].Key == "website" {
			cols[i].Format = console.FormatLink
		}
	}
	return &console.Schema{
		Name:       "customers",
		Title:      "Customers",
		Singular:   "Customer",
		Collection: CollectionCustomers,
		Fields:     fields,
		Columns:    cols,
	}
}

// Devkits lists downloadable SDKs.
func Devkits() *console.Schema {
	fields := []console.Field{
		required("name", "Name", "Devkit name"),
		required("version", "Version", "1.0.0"),
		required("language", "Language", "JavaScript"),
		required("framework", "Framework", "Next.js"),
		{Key: "supportedCompliance", Label: "Supported Compliance (comma-separated)", Kind: console.KindList,
			Placeholder: "ISO27001, SOC2", Required: true},
		withRules(required("downloadUrl", "Download URL", "https://example.com/devkit.zip"), "url"),
		withRules(required("documentationUrl", "Documentation URL", "https://docs.example.com"), "url"),
	}
	cols := listColumns([]console.Column{idColumn}, fields, createdColumn, updatedColumn)
	for i := range cols {
		if cols[i].Key == "downloadUrl" || cols[i].Key == "documentationUrl" {
			cols[i].Format = console.FormatLink
		}
	}
	return &console.Schema{
		Name:       "devkits",
		Title:      "Devkits",
		Singular:   "Devkit",
		Collection: CollectionDevkits,
		Fields:     fields,
		Columns:    cols,
	}
}

// Repositories lists source repositories registered for code scans.
func Repositories() *console.Schema {
	fields := []console.Field{
		required("name", "Repository Name", "Repository name"),
		required("platform", "Platform", "e.g., GitHub, GitLab"),
		withRules(required("repoUrl", "Repository URL", "e.g., https://github.com/org/repo"), "repo_url"),
		relation("customerId", "Select Customer", CollectionCustomers, "name", true),
	}
	cols := listColumns([]console.Column{idColumn}, fields,
		console.Column{Key: "lastScanAt", Header: "Last Scan", Format: console.FormatDateTime})
	return &console.Schema{
		Name:       "repositories",
		Title:      "Repositories",
		Singular:   "Repository",
		Collection: CollectionRepositories,
		Fields:     fields,
		Columns:    cols,
		Stamps:     []console.Stamp{{Key: "lastScanAt", Kind: console.StampNow}},
	}
}

// DbDumps lists uploaded database dumps.
func DbDumps() *console.Schema {
	return &console.Schema{
		Name:       "db-dumps",
		Title:      "DB Dumps",
		Singular:   "DB Dump",
		Collection: CollectionDbDumps,
		Fields: []console.Field{
			required("contentDescription", "Content Description", "e.g., Product details, customer info"),
			required("industry", "Industry", "e.g., Retail, Finance"),
			number("rows", "Row Count", "e.g., 10000", true),
			number("sizeKb", "Size (KB)", "e.g., 2048", true),
			required("filePath", "File Path or URL", "e.g., /uploads/db-dump.sql or https://example.com"),
			relation("customerId", "Select Customer", CollectionCustomers, "name", true),
		},
		Columns: []console.Column{
			{Key: "contentDescription", Header: "Contents of DB"},
			{Key: "industry", Header: "Name of Industry"},
			{Key: "rows", Header: "Number of approximate rows"},
			{Key: "sizeKb", Header: "Approximate size in KB"},
			{Key: "filePath", Header: "S3 or file server path", Format: console.FormatLink},
			{Key: "uploadedAt", Header: "Upload time", Format: console.FormatDateTime},
			{Key: "createdAt", Header: "Record creation time", Format: console.FormatDateTime},
			console.ActionsColumn,
		},
		Stamps: auditStamps,
	}
}

// NetworkSettings lists network deployments and their capture setup.
func NetworkSettings() *console.Schema {
	fields := []console.Field{
		required("deploymentName", "Deployment Name", "e.g., Office Network"),
		required("location", "Location", "e.g., New York Data Center"),
		optional("switchBrand", "Switch Brand", "e.g., Cisco"),
		optional("switchModel", "Switch Model", "e.g., Catalyst 9300"),
		{Key: "spanPortConfigured", Label: "SPAN Port Configured?", Kind: console.KindBool, Default: "false"},
		optional("spanDestinationPort", "SPAN Destination Port", "e.g., Gi1/0/24"),
		optional("spanSourcePorts", "SPAN Source Ports", "e.g., Gi1/0/1, Gi1/0/2"),
		optional("forwardingDeviceType", "Forwarding Device Type", "e.g., Firewall"),
		{Key: "forwardingProtocol", Label: "Forwarding Protocol", Kind: console.KindText, Placeholder: "e.g., tcp", Default: "tcp"},
		withRules(optional("destinationIpForScanner", "Destination IP for Scanner", "e.g., 192.168.1.100"), "ip"),
		optional("captureFilter", "Capture Filter", "e.g., port 80 or host 192.168.1.1"),
		number("networkBandwidthLimitMbps", "Network Bandwidth Limit (Mbps)", "", false),
		number("packetCaptureDurationMinutes", "Packet Capture Duration (Minutes)", "", false),
		relation("customerId", "Select Customer", CollectionCustomers, "name", true),
	}
	return &console.Schema{
		Name:       "network-settings",
		Title:      "Network Settings",
		Singular:   "Network Setting",
		Collection: CollectionNetworkSettings,
		Fields:     fields,
		Columns:    listColumns([]console.Column{idColumn}, fields, createdColumn, updatedColumn),
		Stamps:     auditStamps,
	}
}

// ScanSchedulers lists recurring scan schedules.
func ScanSchedulers() *console.Schema {
	fields := []console.Field{
		choice("scanTargetType", "Scan Target Type", []console.Option{
			{Value: "repository", Label: "Repository"},
			{Value: "network", Label: "Network"},
			{Value: "dbdump", Label: "DB Dump"},
		}, "repository"),
		relation("repositoryId", "Repository ID", CollectionRepositories, "name", false),
		relation("dbDumpId", "DB Dump ID", CollectionDbDumps, "industry", false),
		withRules(choice("scanInterval", "Scan Interval", intervalOptions, "15_minutes"), "scan_interval"),
		number("networkScanPeriodMinutes", "Network Scan Period (Minutes)", "e.g., 60", false),
		{Key: "nextScanAt", Label: "Next Scan At", Kind: console.KindDatetime, DefaultFunc: nextScanDefault},
		{Key: "lastScanAt", Label: "Last Scan At", Kind: console.KindDatetime, DefaultFunc: nowDefault},
		relation("networkDeploymentId", "Select Network Deployment", CollectionNetworkSettings, "deploymentName", false),
	}
	return &console.Schema{
		Name:       "scan-schedulers",
		Title:      "Scan Schedulers",
		Singular:   "Scan Scheduler",
		Collection: CollectionScanSchedulers,
		Fields:     fields,
		Columns:    listColumns([]console.Column{idColumn}, fields, createdColumn, updatedColumn),
		Stamps: []console.Stamp{
			{Key: "nextScanAt", Kind: console.StampValueOrNow},
			{Key: "lastScanAt", Kind: console.StampValueOrNow},
			{Key: "createdAt", Kind: console.StampKeep},
			{Key: "updatedAt", Kind: console.StampNow},
		},
	}
}

// ScanSessions lists individual scan runs.
func ScanSessions() *console.Schema {
	fields := []console.Field{
		choice("scanType", "Scan Type", []console.Option{
			{Value: "code", Label: "Code"},
			{Value: "network", Label: "Network"},
			{Value: "database", Label: "Database"},
		}, "code"),
		relation("repositoryId", "Select Repository", CollectionRepositories, "name", true),
		relation("networkDeploymentId", "Select Network Deployment", CollectionNetworkSettings, "deploymentName", true),
		relation("dbDumpId", "Select DB Dump", CollectionDbDumps, "industry", true),
		{Key: "startedAt", Label: "Started At", Kind: console.KindDatetime},
		{Key: "completedAt", Label: "Completed At", Kind: console.KindDatetime},
		relation("initiatedBy", "Initiated By", CollectionUsers, "name", true),
		relation("schedulerId", "Select Scheduler", CollectionScanSchedulers, "scanTargetType", true),
		relation("customerId", "Select Customer", CollectionCustomers, "name", true),
		choice("status", "Status", []console.Option{
			{Value: "pending", Label: "Pending"},
			{Value: "in_progress", Label: "In Progress"},
			{Value: "completed", Label: "Completed"},
			{Value: "failed", Label: "Failed"},
		}, "pending"),
	}
	return &console.Schema{
		Name:       "scan-sessions",
		Title:      "Scan Sessions",
		Singular:   "Scan Session",
		Collection: CollectionScanSessions,
		Fields:     fields,
		Columns:    listColumns([]console.Column{idColumn}, fields, createdColumn, updatedColumn),
	}
}

func findingFields(types []console.Option) []console.Field {
	return []console.Field{
		relation("scanSessionId", "Select Scan Session", CollectionScanSessions, "scanType", true),
		choice("discoveryType", "Discovery Type", types, ""),
		withRules(choice("severity", "Severity", severityOptions, ""), "severity"),
		required("description", "Description", ""),
	}
}

var detectedColumn = console.Column{Key: "detectedAt", Header: "Detected At", Format: console.FormatDateTime}

// DiscoveryCode lists findings from source code scans.
func DiscoveryCode() *console.Schema {
	fields := append(findingFields([]console.Option{
		{Value: "weak_encryption", Label: "Weak Encryption"},
		{Value: "hardcoded_key", Label: "Hardcoded Key"},
		{Value: "open_port", Label: "Open Port"},
		{Value: "db_misconfiguration", Label: "DB Misconfiguration"},
	}),
		required("filePath", "File Path", ""),
		number("lineNumber", "Line Number", "", true),
		required("lineContent", "Line Content", ""),
		choice("lineContentType", "Line Content Type", []console.Option{
			{Value: "library import", Label: "Library Import"},
			{Value: "invocation", Label: "Invocation"},
			{Value: "definition", Label: "Definition"},
		}, ""),
	)
	return &console.Schema{
		Name:       "discovery-code",
		Title:      "Discovery Code",
		Singular:   "Code Discovery",
		Collection: CollectionDiscoveryCode,
		Fields:     fields,
		Columns:    listColumns([]console.Column{idColumn}, fields, detectedColumn),
		Stamps:     []console.Stamp{{Key: "detectedAt", Kind: console.StampNow}},
	}
}

// DiscoveryDatabase lists findings from database dump scans.
func DiscoveryDatabase() *console.Schema {
	fields := append(findingFields([]console.Option{
		{Value: "unencrypted_column", Label: "Unencrypted Column"},
	}),
		required("tableName", "Table Name", ""),
		required("columnName", "Column Name", ""),
		required("data", "Data Sample", ""),
	)
	return &console.Schema{
		Name:       "discovery-database",
		Title:      "Discovery Database",
		Singular:   "Database Discovery",
		Collection: CollectionDiscoveryDatabase,
		Fields:     fields,
		Columns:    listColumns([]console.Column{idColumn}, fields, detectedColumn),
		Stamps:     []console.Stamp{{Key: "detectedAt", Kind: console.StampNow}},
	}
}

// DiscoveryNetwork lists findings from network captures.
func DiscoveryNetwork() *console.Schema {
	fields := append(findingFields([]console.Option{
		{Value: "open_port", Label: "Open Port"},
		{Value: "weak_tls", Label: "Weak TLS"},
		{Value: "outdated_software", Label: "Outdated Software"},
		{Value: "misconfigured_device", Label: "Misconfigured Device"},
	}),
		withRules(required("sourceIp", "Source IP", ""), "ip"),
		withRules(required("destinationIp", "Destination IP", ""), "ip"),
		number("sourcePort", "Source Port", "", true),
		number("destinationPort", "Destination Port", "", true),
		required("protocol", "Protocol", ""),
		required("cryptographyComment", "Cryptography Comment", ""),
		console.Field{Key: "quantumVulnerable", Label: "Quantum Vulnerable", Kind: console.KindBool},
		required("vulnerableAlgorithms", "Vulnerable Algorithms", ""),
		console.Field{Key: "pqcSchemePresent", Label: "PQC Scheme Present", Kind: console.KindBool},
		required("pqcAlgorithms", "PQC Algorithms", ""),
		console.Field{Key: "detectedAt", Label: "Detected At", Kind: console.KindDatetime},
	)
	return &console.Schema{
		Name:       "discovery-network",
		Title:      "Discovery Network",
		Singular:   "Network Discovery",
		Collection: CollectionDiscoveryNetwork,
		Fields:     fields,
		Columns:    listColumns([]console.Column{idColumn}, fields),
		Stamps:     []console.Stamp{{Key: "detectedAt", Kind: console.StampValueOrNow}},
	}
}

// Users lists console and portal accounts.
func Users() *console.Schema {
	fields := []console.Field{
		required("name", "Name", "Enter name"),
		withRules(required("email", "Email", "Enter email"), "email"),
		{Key: "password", Label: "Password", Kind: console.KindPassword, Placeholder: "Enter password", Required: true, CreateOnly: true},
		choice("role", "Role", []console.Option{
			{Value: "admin", Label: "Admin"},
			{Value: "partner", Label: "Partner"},
			{Value: "customer", Label: "Customer"},
			{Value: "demo", Label: "Demo"},
		}, ""),
		relation("customer_id", "Select Customer", CollectionCustomers, "name", true),
		relation("partner_id", "Partner", CollectionPartners, "name", true),
	}
	return &console.Schema{
		Name:       "users",
		Title:      "Users",
		Singular:   "User",
		Collection: CollectionUsers,
		Fields:     fields,
		Columns:    listColumns([]console.Column{idColumn}, fields, createdColumn, updatedColumn),
	}
}

// Subscriptions lists devkit subscriptions per user.
func Subscriptions() *console.Schema {
	fields := []console.Field{
		{Key: "userId", Label: "User ID", Kind: console.KindText, Placeholder: "UUID of the user", Required: true, CreateOnly: true},
		relation("sdkId", "Select Devkit", CollectionDevkits, "name", true),
		choice("subscriptionPlan", "Subscription Plan", []console.Option{
			{Value: "basic", Label: "Basic"},
			{Value: "pro", Label: "Pro"},
			{Value: "enterprise", Label: "Enterprise"},
		}, "basic"),
		{Key: "subscribedAt", Label: "Subscribed At", Kind: console.KindDatetime, DefaultFunc: nowDefault},
		{Key: "expiresAt", Label: "Expires At", Kind: console.KindDatetime, DefaultFunc: nowDefault},
	}
	return &console.Schema{
		Name:       "subscriptions",
		Title:      "Subscriptions",
		Singular:   "Subscription",
		Collection: CollectionSubscriptions,
		Fields:     fields,
		Columns:    listColumns([]console.Column{idColumn}, fields, createdColumn, updatedColumn),
	}
}
