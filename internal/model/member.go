package model

import "time"

type Belt string

const (
	BeltWhite  Belt = "Blanco"
	BeltYellow Belt = "Amarillo"
	BeltOrange Belt = "Naranja"
	BeltGreen  Belt = "Verde"
	BeltBlue   Belt = "Azul"
	BeltPurple Belt = "Morado"
	BeltBrown  Belt = "Marrón"
	BeltBlack  Belt = "Negro"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Pagado"
	PaymentPending PaymentStatus = "Pendiente"
	PaymentOverdue PaymentStatus = "Vencido"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Bajo"
	RiskMedium RiskLevel = "Medio"
	RiskHigh   RiskLevel = "Alto"
)

// Member is owned by the external member directory; this service only reads it.
type Member struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Discipline    string        `json:"discipline"`
	Belt          Belt          `json:"belt"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	RiskLevel     RiskLevel     `json:"risk_level"`
	JoinDate      time.Time     `json:"join_date"`
}
