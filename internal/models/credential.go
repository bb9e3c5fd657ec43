package models

// CredentialSlot is the primary key of the only row the credential table holds
const CredentialSlot = "session"

// StoredCredential is the persisted bearer token of the signed-in user
type StoredCredential struct {
	BaseModel
	Token string `gorm:"type:text;not null" json:"-"`
}
