package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BookingStatus is the lifecycle state of a booking as seen by the admin
// dashboard and the guest intake flow.
type BookingStatus string

const (
	StatusPendingGuestInformation BookingStatus = "PendingGuestInformation"
	// StatusAwaitingConfirmation is part of the published status vocabulary
	// (dashboard filters accept it) but no transition currently produces it.
	StatusAwaitingConfirmation BookingStatus = "AwaitingConfirmation"
	StatusConfirmed            BookingStatus = "Confirmed"
	StatusCancelled            BookingStatus = "Cancelled"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// BookingToken is the single-use capability link minted at creation.
	// The intake flow only consumes it, it is never rotated.
	BookingToken string `gorm:"uniqueIndex;size:128;column:booking_token" json:"bookingToken"`

	GuestName  string     `gorm:"size:255;column:guest_name" json:"guestName"`
	GuestEmail string     `gorm:"size:150;column:guest_email" json:"guestEmail,omitempty"`
	PriceTotal float64    `gorm:"column:price_total" json:"priceTotal"`
	CheckIn    *time.Time `gorm:"column:check_in" json:"checkIn,omitempty"`
	CheckOut   *time.Time `gorm:"column:check_out" json:"checkOut,omitempty"`

	// Rooms holds the room/occupancy descriptions as entered by the admin,
	// e.g. [{"roomType":"Doppelzimmer","adults":2,"children":0}].
	Rooms datatypes.JSON `gorm:"column:rooms" json:"rooms,omitempty"`

	Status BookingStatus `gorm:"size:64;index;column:status" json:"status"`

	// GuestData is the accumulating intake record, exactly one per booking,
	// created empty (LastCompletedStep == -1) together with the booking.
	GuestData GuestSubmittedData `gorm:"serializer:json;column:guest_data" json:"guestData"`
}

// RoomSelection is one entry of Booking.Rooms.
type RoomSelection struct {
	RoomType string `json:"roomType"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
}
