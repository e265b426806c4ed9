package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	BloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}
	Genders     = []string{"Male", "Female", "Other"}
)

const MinUserAge = 18

// User is a registered person: someone looking for shelter, and a host
// once at least one of their properties is approved.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Phone        string             `bson:"phone" json:"phone"`
	Age          int                `bson:"age" json:"age"`
	BloodGroup   string             `bson:"bloodGroup" json:"bloodGroup"`
	Address      string             `bson:"address" json:"address"`
	AadhaarImage string             `bson:"aadhaarImage" json:"aadhaarImage"`
	Gender       string             `bson:"gender" json:"gender"`
	Face         string             `bson:"face" json:"face"`
	IsHost       bool               `bson:"isHost" json:"isHost"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd)) == nil
}

// Summary is the subset of a user embedded into property and payment responses.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
		Age:      u.Age,
		Address:  u.Address,
		Gender:   u.Gender,
	}
}

type UserSummary struct {
	ID       primitive.ObjectID `json:"_id"`
	FullName string             `json:"fullName"`
	Email    string             `json:"email"`
	Phone    string             `json:"phone,omitempty"`
	Age      int                `json:"age,omitempty"`
	Address  string             `json:"address,omitempty"`
	Gender   string             `json:"gender,omitempty"`
}

// UserUpdate holds the profile fields a user may change themselves.
// Nil fields are left untouched.
type UserUpdate struct {
	FullName     *string `json:"fullName"`
	Phone        *string `json:"phone"`
	Age          *int    `json:"age"`
	BloodGroup   *string `json:"bloodGroup"`
	Address      *string `json:"address"`
	AadhaarImage *string `json:"aadhaarImage"`
	Gender       *string `json:"gender"`
	Face         *string `json:"face"`
}

func (uu UserUpdate) Apply(u *User) {
	if uu.FullName != nil {
		u.FullName = *uu.FullName
	}
	if uu.Phone != nil {
		u.Phone = *uu.Phone
	}
	if uu.Age != nil {
		u.Age = *uu.Age
	}
	if uu.BloodGroup != nil {
		u.BloodGroup = *uu.BloodGroup
	}
	if uu.Address != nil {
		u.Address = *uu.Address
	}
	if uu.AadhaarImage != nil {
		u.AadhaarImage = *uu.AadhaarImage
	}
	if uu.Gender != nil {
		u.Gender = *uu.Gender
	}
	if uu.Face != nil {
		u.Face = *uu.Face
	}
}

type UserFilter struct {
	HostsOnly bool
}
