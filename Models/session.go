package Models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// CustomerSession identifies a verified customer across visits. The client
// only ever holds the opaque token; every use rotates it and extends the
// expiry, so presence of a token is never treated as eternal validity.
type CustomerSession struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	Token     string          `json:"token" gorm:"uniqueIndex;not null"`
	Phone     string          `json:"phone" gorm:"index"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Entries   []ActivityEntry `json:"entries" gorm:"foreignKey:SessionID"`
}

// ActivityVehicle is the finalized vehicle tuple embedded in an entry.
type ActivityVehicle struct {
	BrandSlug string `json:"brandSlug"`
	BrandName string `json:"brandName"`
	ModelSlug string `json:"modelSlug"`
	ModelName string `json:"modelName"`
	FuelType  string `json:"fuelType"`
}

// ActivityEntry records one finalized vehicle search / quote request.
// Append-only, entries are never updated.
type ActivityEntry struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	SessionID      uint            `json:"-" gorm:"index;not null"`
	SessionToken   string          `json:"sessionToken"`
	Phone          string          `json:"phone"`
	Vehicle        ActivityVehicle `json:"vehicle" gorm:"embedded;embeddedPrefix:vehicle_"`
	VehicleSummary string          `json:"vehicleSummary"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func NewSessionToken() string {
	return uuid.NewString()
}

// FindActiveSession looks a session up by token, rejecting expired ones.
func FindActiveSession(db *gorm.DB, token string) (*CustomerSession, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	var session CustomerSession
	err := db.Where("token = ? AND expires_at > ?", token, time.Now()).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// EstablishSession returns the live session for a phone number, creating one
// on first verification.
func EstablishSession(db *gorm.DB, phone string, ttl time.Duration) (*CustomerSession, error) {
	var session CustomerSession
	err := db.Where("phone = ?", phone).Order("updated_at desc").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = CustomerSession{
			Token:     NewSessionToken(),
			Phone:     phone,
			ExpiresAt: time.Now().Add(ttl),
		}
		if err := db.Create(&session).Error; err != nil {
			return nil, err
		}
		return &session, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RotateSession issues a fresh token and pushes the expiry out. Called on
// every successful activity log so tokens never outlive their use.
func RotateSession(db *gorm.DB, session *CustomerSession, ttl time.Duration) error {
	session.Token = NewSessionToken()
	session.ExpiresAt = time.Now().Add(ttl)
	return db.Save(session).Error
}

// AppendActivityEntry records a finalized vehicle search against a session.
func AppendActivityEntry(db *gorm.DB, session *CustomerSession, vehicle ActivityVehicle) (*ActivityEntry, error) {
	entry := ActivityEntry{
		ID:             uuid.NewString(),
		SessionID:      session.ID,
		SessionToken:   session.Token,
		Phone:          session.Phone,
		Vehicle:        vehicle,
		VehicleSummary: vehicle.FuelType + " " + vehicle.BrandName + " " + vehicle.ModelName,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// LoadSessionEntries fills session.Entries, oldest first.
func LoadSessionEntries(db *gorm.DB, session *CustomerSession) error {
	return db.Where("session_id = ?", session.ID).Order("created_at asc").Find(&session.Entries).Error
}
