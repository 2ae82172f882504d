package inventory

import (
	"fmt"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// Step un movimiento a aplicar sobre el stock (servicio de dominio, sin persistencia).
// Quantity se usa en entrada/saida; Target en ajuste.
type Step struct {
	Type     string
	Quantity int
	Target   int
}

// Result resultado de aplicar un Step: stock antes/después y cantidad a registrar en el ledger.
type Result struct {
	Previous int
	New      int
	Quantity int
}

// Apply aplica un movimiento al stock actual:
//
//	entrada: s + q
//	saida:   max(0, s - q)
//	ajuste:  target, registrando |target - s|
//
// La cantidad registrada siempre es > 0.
func Apply(current int, step Step) (Result, error) {
	if current < 0 {
		return Result{}, fmt.Errorf("%w: stock actual negativo", domain.ErrInvalidInput)
	}
	res := Result{Previous: current}
	switch step.Type {
	case entity.MovementEntrada:
		if step.Quantity <= 0 {
			return Result{}, fmt.Errorf("%w: quantity debe ser mayor que cero", domain.ErrInvalidInput)
		}
		res.Quantity = step.Quantity
		res.New = current + step.Quantity
	case entity.MovementSaida:
		if step.Quantity <= 0 {
			return Result{}, fmt.Errorf("%w: quantity debe ser mayor que cero", domain.ErrInvalidInput)
		}
		res.Quantity = step.Quantity
		res.New = current - step.Quantity
		if res.New < 0 {
			res.New = 0
		}
	case entity.MovementAjuste:
		if step.Target < 0 {
			return Result{}, fmt.Errorf("%w: new_stock no puede ser negativo", domain.ErrInvalidInput)
		}
		diff := step.Target - current
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 {
			return Result{}, fmt.Errorf("%w: el ajuste no cambia el stock", domain.ErrInvalidInput)
		}
		res.Quantity = diff
		res.New = step.Target
	default:
		return Result{}, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, step.Type)
	}
	return res, nil
}

// Fold aplica una secuencia de movimientos desde start y devuelve el stock final.
func Fold(start int, steps []Step) (int, error) {
	cur := start
	for i, s := range steps {
		res, err := Apply(cur, s)
		if err != nil {
			return cur, fmt.Errorf("paso %d: %w", i, err)
		}
		cur = res.New
	}
	return cur, nil
}
