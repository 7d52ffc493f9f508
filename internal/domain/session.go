package domain

const (
	DefaultDocumentType = "PASSPORT"
	DefaultCountry      = "US"
	DefaultLang         = "en"

	SessionStatusCreated = "created"
)

// SessionRequest carries the optional end-user fields forwarded to the
// provider when a verification session is created.
type SessionRequest struct {
	FirstName    string
	LastName     string
	DocumentType string
	Country      string
	Lang         string
	VendorData   string
	CallbackURL  string
}

func (r SessionRequest) WithDefaults() SessionRequest {
	if r.DocumentType == "" {
		r.DocumentType = DefaultDocumentType
	}
	if r.Country == "" {
		r.Country = DefaultCountry
	}
	if r.Lang == "" {
		r.Lang = DefaultLang
	}
	return r
}

type Session struct {
	ID     string
	URL    string
	Status string
}
