// Package category defines the sensitive-data taxonomy: a fixed tree of
// category groups with leaf subtypes that detectors attach to. The tree is
// built once at startup and frozen; extension leaves may be registered at
// configuration time before the freeze.
package category

import (
	"fmt"
	"sort"
	"sync"
)

// Category is a stable taxonomy identifier. Group categories use a single
// segment ("financial"); leaves are dot-qualified ("financial.credit_card").
type Category string

// Sensitivity ranks the risk level of data in a category.
type Sensitivity int

const (
	SensitivityNone Sensitivity = iota
	SensitivityLow
	SensitivityMedium
	SensitivityHigh
)

// String returns the sensitivity name.
func (s Sensitivity) String() string {
	switch s {
	case SensitivityNone:
		return "none"
	case SensitivityLow:
		return "low"
	case SensitivityMedium:
		return "medium"
	case SensitivityHigh:
		return "high"
	}
	return "unknown"
}

// RequiresSpecialHandling reports whether data in this band needs elevated
// controls (access logging, shortened retention).
func (s Sensitivity) RequiresSpecialHandling() bool {
	return s >= SensitivityHigh
}

// Top-level category groups.
const (
	GroupPII               Category = "pii"
	GroupSPI               Category = "spi"
	GroupFinancial         Category = "financial"
	GroupHealth            Category = "health"
	GroupBiometric         Category = "biometric"
	GroupContact           Category = "contact"
	GroupDemographic       Category = "demographic"
	GroupDigitalIdentifier Category = "digital_identifier"
	GroupGovernmentLegal   Category = "government_legal"
	GroupProfessional      Category = "professional"
	GroupBehavioral        Category = "behavioral"
	GroupGeolocation       Category = "geolocation"
	GroupContentMedia      Category = "content_media"
)

// Leaf categories.
const (
	FullName      Category = "pii.full_name"
	DateOfBirth   Category = "pii.date_of_birth"
	MothersMaiden Category = "pii.mothers_maiden_name"

	Religion             Category = "spi.religion"
	Ethnicity            Category = "spi.ethnicity"
	SexualOrientation    Category = "spi.sexual_orientation"
	PoliticalAffiliation Category = "spi.political_affiliation"

	CreditCard    Category = "financial.credit_card"
	BankAccount   Category = "financial.bank_account"
	IBAN          Category = "financial.iban"
	RoutingNumber Category = "financial.routing_number"
	SwiftCode     Category = "financial.swift_code"
	CryptoWallet  Category = "financial.crypto_wallet"

	MedicalRecordNumber Category = "health.medical_record_number"
	HealthCondition     Category = "health.health_condition"
	InsuranceID         Category = "health.insurance_id"
	MedicareID          Category = "health.medicare_id"

	FingerprintData Category = "biometric.fingerprint"
	FacialGeometry  Category = "biometric.facial_geometry"
	VoicePrint      Category = "biometric.voice_print"

	Email         Category = "contact.email"
	PhoneNumber   Category = "contact.phone_number"
	StreetAddress Category = "contact.street_address"
	PostalCode    Category = "contact.postal_code"

	Gender        Category = "demographic.gender"
	Nationality   Category = "demographic.nationality"
	MaritalStatus Category = "demographic.marital_status"

	IPAddress    Category = "digital_identifier.ip_address"
	IPv6Address  Category = "digital_identifier.ipv6_address"
	MACAddress   Category = "digital_identifier.mac_address"
	IMEI         Category = "digital_identifier.imei"
	DeviceID     Category = "digital_identifier.device_id"
	Username     Category = "digital_identifier.username"
	APIKey       Category = "digital_identifier.api_key"
	AWSAccessKey Category = "digital_identifier.aws_access_key"
	JWTToken     Category = "digital_identifier.jwt"
	PrivateKey   Category = "digital_identifier.private_key"
	Password     Category = "digital_identifier.password"

	SSN            Category = "government_legal.ssn"
	PassportNumber Category = "government_legal.passport_number"
	DriversLicense Category = "government_legal.drivers_license"
	TaxID          Category = "government_legal.tax_id"
	NationalID     Category = "government_legal.national_id"
	VIN            Category = "government_legal.vin"

	EmployeeID    Category = "professional.employee_id"
	LicenseNumber Category = "professional.license_number"

	AdvertisingID   Category = "behavioral.advertising_id"
	BrowsingHistory Category = "behavioral.browsing_history"

	GPSCoordinates Category = "geolocation.gps_coordinates"
	Geohash        Category = "geolocation.geohash"

	EXIFLocation Category = "content_media.exif_location"
)

// IsLeaf reports whether the identifier names a leaf (dot-qualified) node.
func (c Category) IsLeaf() bool {
	for i := 0; i < len(c); i++ {
		if c[i] == '.' {
			return true
		}
	}
	return false
}

// Group returns the top-level group a leaf belongs to, or the category
// itself when it is already a group.
func (c Category) Group() Category {
	for i := 0; i < len(c); i++ {
		if c[i] == '.' {
			return c[:i]
		}
	}
	return c
}

// Node is one entry in the taxonomy tree.
type Node struct {
	ID          Category
	Parent      Category // empty for top-level groups
	DisplayName string
	Sensitivity Sensitivity
}

// Registry holds the taxonomy tree. It is mutable until Freeze and
// read-only afterwards; all engine components share one frozen registry.
type Registry struct {
	mu     sync.RWMutex
	nodes  map[Category]Node
	frozen bool
}

// NewRegistry creates an empty taxonomy registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[Category]Node)}
}

// Default builds the built-in taxonomy and returns it frozen.
func Default() *Registry {
	r := NewRegistry()
	r.registerBuiltins()
	r.Freeze()
	return r
}

// Builder builds the built-in taxonomy but leaves the registry open so
// callers can add extension categories before freezing.
func Builder() *Registry {
	r := NewRegistry()
	r.registerBuiltins()
	return r
}

// Register adds a node. Leaf nodes must name an existing parent group.
// Registration after Freeze fails with an error.
func (r *Registry) Register(n Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("taxonomy is frozen: cannot register %q", n.ID)
	}
	if n.ID == "" {
		return fmt.Errorf("category id cannot be empty")
	}
	if n.ID.IsLeaf() {
		if n.Parent == "" {
			n.Parent = n.ID.Group()
		}
		if _, ok := r.nodes[n.Parent]; !ok {
			return fmt.Errorf("leaf %q names unknown parent %q", n.ID, n.Parent)
		}
	}
	r.nodes[n.ID] = n
	return nil
}

// Freeze makes the registry immutable.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether the registry is immutable.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns the node for a category.
func (r *Registry) Lookup(c Category) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[c]
	return n, ok
}

// Contains reports whether the category exists in the taxonomy.
func (r *Registry) Contains(c Category) bool {
	_, ok := r.Lookup(c)
	return ok
}

// Sensitivity returns the sensitivity band for a category, falling back to
// the parent group when the leaf is unknown.
func (r *Registry) Sensitivity(c Category) Sensitivity {
	if n, ok := r.Lookup(c); ok {
		return n.Sensitivity
	}
	if n, ok := r.Lookup(c.Group()); ok {
		return n.Sensitivity
	}
	return SensitivityLow
}

// Leaves returns all leaf categories in sorted order.
func (r *Registry) Leaves() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var leaves []Category
	for id := range r.nodes {
		if id.IsLeaf() {
			leaves = append(leaves, id)
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i] < leaves[j] })
	return leaves
}

// Children returns the leaves under a group in sorted order.
func (r *Registry) Children(group Category) []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Category
	for id, n := range r.nodes {
		if n.Parent == group {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PriorityTable maps categories to tie-break priorities used by the match
// resolver. Higher values win. Categories absent from the table fall back
// to their sensitivity band.
type PriorityTable map[Category]int

// DefaultPriorities returns the built-in overlap tie-break table. Checksum
// and government identifiers outrank generic digit-run categories so that,
// for example, an SSN embedded in a longer number is not claimed by a
// lower-value detector of equal span.
func DefaultPriorities() PriorityTable {
	return PriorityTable{
		CreditCard:     90,
		SSN:            88,
		IBAN:           86,
		MedicareID:     84,
		PassportNumber: 80,
		TaxID:          78,
		RoutingNumber:  76,
		BankAccount:    74,
		IMEI:           70,
		VIN:            68,
		PrivateKey:     66,
		AWSAccessKey:   64,
		JWTToken:       62,
		Email:          50,
		PhoneNumber:    48,
		IPAddress:      40,
		IPv6Address:    40,
		MACAddress:     38,
		GPSCoordinates: 36,
		DateOfBirth:    30,
		PostalCode:     20,
	}
}

// Priority resolves a category's tie-break priority against the table,
// using the registry's sensitivity band (scaled) as the fallback.
func (r *Registry) Priority(table PriorityTable, c Category) int {
	if p, ok := table[c]; ok {
		return p
	}
	return int(r.Sensitivity(c)) * 10
}

func (r *Registry) registerBuiltins() {
	groups := []Node{
		{ID: GroupPII, DisplayName: "Personally Identifiable Information", Sensitivity: SensitivityHigh},
		{ID: GroupSPI, DisplayName: "Sensitive Personal Information", Sensitivity: SensitivityHigh},
		{ID: GroupFinancial, DisplayName: "Financial", Sensitivity: SensitivityHigh},
		{ID: GroupHealth, DisplayName: "Health", Sensitivity: SensitivityHigh},
		{ID: GroupBiometric, DisplayName: "Biometric", Sensitivity: SensitivityHigh},
		{ID: GroupContact, DisplayName: "Contact", Sensitivity: SensitivityMedium},
		{ID: GroupDemographic, DisplayName: "Demographic", Sensitivity: SensitivityMedium},
		{ID: GroupDigitalIdentifier, DisplayName: "Digital Identifier", Sensitivity: SensitivityMedium},
		{ID: GroupGovernmentLegal, DisplayName: "Government / Legal", Sensitivity: SensitivityHigh},
		{ID: GroupProfessional, DisplayName: "Professional", Sensitivity: SensitivityLow},
		{ID: GroupBehavioral, DisplayName: "Behavioral", Sensitivity: SensitivityLow},
		{ID: GroupGeolocation, DisplayName: "Geolocation", Sensitivity: SensitivityMedium},
		{ID: GroupContentMedia, DisplayName: "Content / Media", Sensitivity: SensitivityLow},
	}
	leaves := []Node{
		{ID: FullName, DisplayName: "Full Name", Sensitivity: SensitivityMedium},
		{ID: DateOfBirth, DisplayName: "Date of Birth", Sensitivity: SensitivityHigh},
		{ID: MothersMaiden, DisplayName: "Mother's Maiden Name", Sensitivity: SensitivityHigh},
		{ID: Religion, DisplayName: "Religion", Sensitivity: SensitivityHigh},
		{ID: Ethnicity, DisplayName: "Ethnicity", Sensitivity: SensitivityHigh},
		{ID: SexualOrientation, DisplayName: "Sexual Orientation", Sensitivity: SensitivityHigh},
		{ID: PoliticalAffiliation, DisplayName: "Political Affiliation", Sensitivity: SensitivityHigh},
		{ID: CreditCard, DisplayName: "Credit Card Number", Sensitivity: SensitivityHigh},
		{ID: BankAccount, DisplayName: "Bank Account Number", Sensitivity: SensitivityHigh},
		{ID: IBAN, DisplayName: "IBAN", Sensitivity: SensitivityHigh},
		{ID: RoutingNumber, DisplayName: "ABA Routing Number", Sensitivity: SensitivityMedium},
		{ID: SwiftCode, DisplayName: "SWIFT/BIC Code", Sensitivity: SensitivityMedium},
		{ID: CryptoWallet, DisplayName: "Cryptocurrency Wallet", Sensitivity: SensitivityMedium},
		{ID: MedicalRecordNumber, DisplayName: "Medical Record Number", Sensitivity: SensitivityHigh},
		{ID: HealthCondition, DisplayName: "Health Condition", Sensitivity: SensitivityHigh},
		{ID: InsuranceID, DisplayName: "Insurance ID", Sensitivity: SensitivityHigh},
		{ID: MedicareID, DisplayName: "Medicare Beneficiary ID", Sensitivity: SensitivityHigh},
		{ID: FingerprintData, DisplayName: "Fingerprint Data", Sensitivity: SensitivityHigh},
		{ID: FacialGeometry, DisplayName: "Facial Geometry", Sensitivity: SensitivityHigh},
		{ID: VoicePrint, DisplayName: "Voice Print", Sensitivity: SensitivityHigh},
		{ID: Email, DisplayName: "Email Address", Sensitivity: SensitivityMedium},
		{ID: PhoneNumber, DisplayName: "Phone Number", Sensitivity: SensitivityMedium},
		{ID: StreetAddress, DisplayName: "Street Address", Sensitivity: SensitivityMedium},
		{ID: PostalCode, DisplayName: "Postal Code", Sensitivity: SensitivityLow},
		{ID: Gender, DisplayName: "Gender", Sensitivity: SensitivityMedium},
		{ID: Nationality, DisplayName: "Nationality", Sensitivity: SensitivityMedium},
		{ID: MaritalStatus, DisplayName: "Marital Status", Sensitivity: SensitivityLow},
		{ID: IPAddress, DisplayName: "IPv4 Address", Sensitivity: SensitivityLow},
		{ID: IPv6Address, DisplayName: "IPv6 Address", Sensitivity: SensitivityLow},
		{ID: MACAddress, DisplayName: "MAC Address", Sensitivity: SensitivityLow},
		{ID: IMEI, DisplayName: "IMEI", Sensitivity: SensitivityMedium},
		{ID: DeviceID, DisplayName: "Device Identifier", Sensitivity: SensitivityLow},
		{ID: Username, DisplayName: "Username", Sensitivity: SensitivityLow},
		{ID: APIKey, DisplayName: "API Key", Sensitivity: SensitivityHigh},
		{ID: AWSAccessKey, DisplayName: "AWS Access Key", Sensitivity: SensitivityHigh},
		{ID: JWTToken, DisplayName: "JSON Web Token", Sensitivity: SensitivityHigh},
		{ID: PrivateKey, DisplayName: "Private Key Material", Sensitivity: SensitivityHigh},
		{ID: Password, DisplayName: "Password", Sensitivity: SensitivityHigh},
		{ID: SSN, DisplayName: "Social Security Number", Sensitivity: SensitivityHigh},
		{ID: PassportNumber, DisplayName: "Passport Number", Sensitivity: SensitivityHigh},
		{ID: DriversLicense, DisplayName: "Driver's License", Sensitivity: SensitivityHigh},
		{ID: TaxID, DisplayName: "Tax Identifier (EIN)", Sensitivity: SensitivityHigh},
		{ID: NationalID, DisplayName: "National ID", Sensitivity: SensitivityHigh},
		{ID: VIN, DisplayName: "Vehicle Identification Number", Sensitivity: SensitivityMedium},
		{ID: EmployeeID, DisplayName: "Employee ID", Sensitivity: SensitivityLow},
		{ID: LicenseNumber, DisplayName: "Professional License Number", Sensitivity: SensitivityLow},
		{ID: AdvertisingID, DisplayName: "Advertising ID", Sensitivity: SensitivityLow},
		{ID: BrowsingHistory, DisplayName: "Browsing History", Sensitivity: SensitivityLow},
		{ID: GPSCoordinates, DisplayName: "GPS Coordinates", Sensitivity: SensitivityMedium},
		{ID: Geohash, DisplayName: "Geohash", Sensitivity: SensitivityMedium},
		{ID: EXIFLocation, DisplayName: "EXIF Location Data", Sensitivity: SensitivityMedium},
	}

	for _, n := range groups {
		r.nodes[n.ID] = n
	}
	for _, n := range leaves {
		if n.Parent == "" {
			n.Parent = n.ID.Group()
		}
		r.nodes[n.ID] = n
	}
}
