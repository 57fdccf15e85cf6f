package models

import (
	"time"

	"github.com/lib/pq"
)

// User is a registered account, one per email.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Photo     string    `db:"photo" json:"photo,omitempty"`
	Role      string    `db:"role" json:"role,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Tuition is a posting by a student looking for a tutor.
type Tuition struct {
	ID           int64          `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	StudentClass string         `db:"student_class" json:"studentClass"`
	Location     string         `db:"location" json:"location"`
	Subjects     pq.StringArray `db:"subjects" json:"subjects"`
	Salary       int64          `db:"salary" json:"salary"`
	DaysPerWeek  int            `db:"days_per_week" json:"daysPerWeek"`
	Description  string         `db:"description" json:"description"`
	Image        string         `db:"image" json:"image,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Tutor is a tutor profile offered on the marketplace.
type Tutor struct {
	ID          int64          `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Subjects    pq.StringArray `db:"subjects" json:"subjects"`
	Location    string         `db:"location" json:"location"`
	Photo       string         `db:"photo" json:"photo,omitempty"`
	Description string         `db:"description" json:"description"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Order is one confirmed payment for one tutoring engagement. It is
// materialized exactly once per checkout session: transaction_id carries the
// provider's payment-intent id and is unique in the store.
type Order struct {
	ID            int64     `db:"id" json:"id"`
	TutorID       int64     `db:"tutor_id" json:"tutorId"`
	TransactionID string    `db:"transaction_id" json:"transactionId"`
	StudentEmail  string    `db:"student_email" json:"studentEmail"`
	Status        string    `db:"status" json:"status"`
	Quantity      int       `db:"quantity" json:"quantity"`
	// Price is the paid amount in minor currency units (cents).
	Price     int64     `db:"price" json:"price"`
	Image     string    `db:"image" json:"image,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusPending = "pending"
)
