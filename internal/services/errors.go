package services

import (
	"errors"

	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/internal/statemachine"
)

// Common service errors
var (
	ErrNotFound     = repository.ErrNotFound
	ErrDuplicate    = repository.ErrDuplicate
	ErrInvalidState = statemachine.ErrInvalidTransition
	ErrInvalidInput = errors.New("datos inválidos")
)

// Schedule errors
var (
	ErrUnsupportedFrequency = errors.New("plazo de pago no soportado")
	ErrNoParticipations     = errors.New("el arrendamiento no tiene participaciones")
	ErrAlreadyScheduled     = errors.New("el arrendamiento ya tiene cuotas generadas")
	ErrInvalidDates         = errors.New("la fecha de fin es anterior a la fecha de inicio")
)

// Pricing errors
var (
	ErrNoPriceData       = errors.New("no hay precios para el período")
	ErrUnsupportedPolicy = errors.New("política de promedio no soportada")
	ErrNotPriceable      = errors.New("el pago es por porcentaje y no se cotiza")
	ErrAlreadyPriced     = errors.New("el pago ya tiene precio asignado")
)

// Lifecycle errors
var (
	ErrAlreadyPaidOrCancelled = errors.New("el pago ya fue realizado o cancelado")
	ErrNotYetPriced           = errors.New("el pago todavía no tiene monto")
)

// Configuration errors
var (
	ErrSettingNotFound = errors.New("configuración no encontrada")
	ErrInvalidSetting  = errors.New("valor de configuración inválido")
)
