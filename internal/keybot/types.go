package keybot

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ID is an identifier the API sends either as a JSON number or a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Customer mirrors the customer payload used by /customers and /customers/{id}.
type Customer struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	TotalSpent  float64 `json:"total_spent"`
	LastService string  `json:"last_service"`
}

// Address is one entry of a customer's address history.
type Address struct {
	ID        int64  `json:"id,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	IsPrimary bool   `json:"is_primary"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CustomerAppointment is an appointment as listed on a customer record.
type CustomerAppointment struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    int    `json:"duration"`
	Status      string `json:"status"`
	ServiceType string `json:"service_type"`
	Technician  string `json:"technician"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

// Note is a free-text note attached to a customer.
type Note struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	CreatedBy string `json:"created_by"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// File describes a document stored against a customer.
type File struct {
	ID         int64  `json:"id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	UploadedAt string `json:"uploaded_at"`
	URL        string `json:"url"`
}

// Quote mirrors the /quotes listing.
type Quote struct {
	ID           ID      `json:"id"`
	QuoteNumber  string  `json:"quote_number"`
	CustomerName string  `json:"customer_name"`
	PhoneNumber  string  `json:"phone_number"`
	VehicleMake  string  `json:"vehicle_make"`
	VehicleModel string  `json:"vehicle_model"`
	VehicleYear  string  `json:"vehicle_year"`
	KeyType      string  `json:"key_type"`
	ServiceType  string  `json:"service_type"`
	Price        float64 `json:"price"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	HasRecording bool    `json:"has_recording"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (q Quote) ParsedCreatedAt() time.Time {
	return parseTime(q.CreatedAt)
}

// QuoteInput is the payload accepted by POST /quotes.
type QuoteInput struct {
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Year         int    `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	KeyType      string `json:"key_type"`
	ServiceType  string `json:"service_type"`
	Address      string `json:"address"`
}

// Appointment is a calendar entry from /appointments.
type Appointment struct {
	ID             ID     `json:"id"`
	Title          string `json:"title"`
	Start          string `json:"start"`
	End            string `json:"end"`
	CustomerName   string `json:"customer_name"`
	PhoneNumber    string `json:"phone_number"`
	ServiceType    string `json:"service_type"`
	TechnicianName string `json:"technician_name"`
	Notes          string `json:"notes,omitempty"`
	Status         string `json:"status"`
}

// ParsedStart returns the parsed Start timestamp.
func (a Appointment) ParsedStart() time.Time {
	return parseTime(a.Start)
}

// ParsedEnd returns the parsed End timestamp.
func (a Appointment) ParsedEnd() time.Time {
	return parseTime(a.End)
}

// AppointmentInput is what a user fills in to book an appointment. Date and
// Time are interpreted in the service's location.
type AppointmentInput struct {
	CustomerName   string
	PhoneNumber    string
	ServiceType    string
	TechnicianName string
	Date           string // 2006-01-02
	Time           string // 15:04
	Duration       time.Duration
	Notes          string
}

// appointmentPayload is the wire form of a new appointment.
type appointmentPayload struct {
	CustomerName   string `json:"customer_name"`
	PhoneNumber    string `json:"phone_number"`
	ServiceType    string `json:"service_type"`
	TechnicianName string `json:"technician_name"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Notes          string `json:"notes"`
	Status         string `json:"status"`
}

// Settings mirrors /settings.
type Settings struct {
	Twilio    TwilioSettings    `json:"twilioSettings"`
	Email     EmailSettings     `json:"emailSettings"`
	Calendar  CalendarSettings  `json:"calendarSettings"`
	Recording RecordingSettings `json:"recordingSettings"`
	Pricing   PricingSettings   `json:"pricingSettings"`
	Custom    CustomOptions     `json:"customOptions"`
}

type TwilioSettings struct {
	AccountSID  string `json:"account_sid"`
	AuthToken   string `json:"auth_token"`
	PhoneNumber string `json:"phone_number"`
	Enabled     bool   `json:"enabled"`
}

type EmailSettings struct {
	SenderEmail  string `json:"sender_email"`
	SMTPServer   string `json:"smtp_server"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	Enabled      bool   `json:"enabled"`
}

type CalendarSettings struct {
	Technicians                []Technician `json:"technicians"`
	WorkingHours               WorkingHours `json:"working_hours"`
	DefaultAppointmentDuration int          `json:"default_appointment_duration"`
}

type Technician struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	CalendarColor string `json:"calendar_color"`
	Status        string `json:"status"`
}

type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type RecordingSettings struct {
	StorageProvider  string `json:"storage_provider"`
	StorageBucket    string `json:"storage_bucket"`
	RecordingEnabled bool   `json:"recording_enabled"`
}

type PricingSettings struct {
	DefaultMarkupPercentage float64 `json:"default_markup_percentage"`
	MinimumPrice            float64 `json:"minimum_price"`
	EmergencyFee            float64 `json:"emergency_fee"`
	AfterHoursFee           float64 `json:"after_hours_fee"`
}

type CustomOptions struct {
	KeyTypes       []string `json:"key_types"`
	ServiceTypes   []string `json:"service_types"`
	PaymentMethods []string `json:"payment_methods"`
	LeadSources    []string `json:"lead_sources"`
	Statuses       []string `json:"statuses"`
}

// DefaultSettings is used when the server has no settings stored yet.
func DefaultSettings() Settings {
	return Settings{
		Calendar: CalendarSettings{
			Technicians:                []Technician{},
			WorkingHours:               WorkingHours{Start: "09:00", End: "17:00"},
			DefaultAppointmentDuration: 60,
		},
		Email:     EmailSettings{SMTPPort: 587},
		Recording: RecordingSettings{StorageProvider: "local", RecordingEnabled: true},
		Custom: CustomOptions{
			KeyTypes:       []string{"Transponder", "Remote", "Smart Key", "Standard"},
			ServiceTypes:   []string{"Key Replacement", "Lockout", "Key Programming", "Lock Repair"},
			PaymentMethods: []string{"Cash", "Card"},
			LeadSources:    []string{"Phone", "Website", "Referral"},
			Statuses:       []string{"pending", "confirmed", "completed", "cancelled"},
		},
	}
}

// Recording is the call recording attached to a quote.
type Recording struct {
	URL          string `json:"url"`
	CustomerName string `json:"customer_name"`
	CreatedAt    string `json:"created_at"`
	QuoteNumber  string `json:"quote_number"`
}

// PricingItem is one row of the uploaded pricing sheet.
type PricingItem struct {
	Make    string  `json:"make"`
	Model   string  `json:"model"`
	Year    string  `json:"year"`
	KeyType string  `json:"key_type"`
	Service string  `json:"service"`
	Price   float64 `json:"price"`
}

// PricingData mirrors /pricing.
type PricingData struct {
	Items      []PricingItem `json:"items"`
	Total      int           `json:"total"`
	LastUpload string        `json:"last_upload"`
}

// PricingUpload is one entry of the pricing upload history.
type PricingUpload struct {
	ID           int64  `json:"id"`
	Filename     string `json:"filename"`
	UploadedAt   string `json:"uploaded_at"`
	UploadedBy   string `json:"uploaded_by"`
	RowCount     int    `json:"row_count"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ParsedUploadedAt returns the parsed UploadedAt timestamp.
func (u PricingUpload) ParsedUploadedAt() time.Time {
	return parseTime(u.UploadedAt)
}

// CallQuote is a quote produced by the phone receptionist.
type CallQuote struct {
	ID            int64   `json:"id"`
	QuoteNumber   string  `json:"quote_number"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Timestamp     string  `json:"timestamp"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
}

// RecentCall is one inbound call handled by the receptionist.
type RecentCall struct {
	ID           int64  `json:"id"`
	PhoneNumber  string `json:"phone_number"`
	Timestamp    string `json:"timestamp"`
	Duration     int    `json:"duration"`
	CallType     string `json:"call_type"`
	Notes        string `json:"notes,omitempty"`
	RecordingURL string `json:"recording_url,omitempty"`
}

// DurationTime returns the call duration, reported by the API in seconds.
func (c RecentCall) DurationTime() time.Duration {
	return time.Duration(c.Duration) * time.Second
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
