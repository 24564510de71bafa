package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/policy"
)

var errNotAllowed = errors.New("navigation not allowed")

// ListCars reloads the car collection and prints it, optionally narrowed to
// owners whose display name contains filter.
func (a *App) ListCars(ctx context.Context, filter string) error {
	if !a.enter(ctx, policy.SectionCars) {
		return errNotAllowed
	}
	if _, err := a.state.Cars.Load(ctx); err != nil {
		a.report(err)
		return err
	}

	cars := a.snapshotCars()
	if filter != "" {
		cars = models.FilterCarsByOwner(cars, filter)
	}
	a.println(headingStyle.Render("Cars"))
	renderCars(a.out, cars)
	return nil
}

// AddCar creates a car through the endpoint the access policy selects:
// admins pick an owner, everyone else creates for themselves.
func (a *App) AddCar(ctx context.Context) error {
	if !a.enter(ctx, policy.SectionCars) {
		return errNotAllowed
	}
	decision := a.snapshotDecision()

	payload, err := a.carForm(models.CarPayload{})
	if err != nil {
		return err
	}
	if decision.Write == policy.WriteForOwner {
		if payload.OwnerID, err = a.pickOwner(); err != nil {
			a.report(err)
			return err
		}
	}

	car, err := a.state.Cars.Create(ctx, payload, decision.Write)
	if err != nil {
		a.report(err)
		return err
	}
	a.ok(fmt.Sprintf("Car #%d added.", car.ID))
	return nil
}

func (a *App) EditCar(ctx context.Context, arg string) error {
	if !a.enter(ctx, policy.SectionCars) {
		return errNotAllowed
	}
	car, err := a.lookupCar(ctx, arg)
	if err != nil {
		a.report(err)
		return err
	}

	payload, err := a.carForm(models.PayloadFromCar(car))
	if err != nil {
		return err
	}
	if _, err := a.state.Cars.Update(ctx, car.ID, payload); err != nil {
		a.report(err)
		return err
	}
	a.ok(fmt.Sprintf("Car #%d updated.", car.ID))
	return nil
}

func (a *App) DeleteCar(ctx context.Context, arg string) error {
	if !a.enter(ctx, policy.SectionCars) {
		return errNotAllowed
	}
	car, err := a.lookupCar(ctx, arg)
	if err != nil {
		a.report(err)
		return err
	}
	yes, err := a.confirm(fmt.Sprintf("Delete %s %s (#%d)?", car.Brand, car.Model, car.ID))
	if err != nil || !yes {
		return err
	}

	if err := a.state.Cars.Delete(ctx, car.ID); err != nil {
		a.report(err)
		return err
	}
	a.ok(fmt.Sprintf("Car #%d deleted.", car.ID))
	return nil
}

// lookupCar resolves arg (or a prompted id) against the cached collection,
// loading it first when the id is not cached yet.
func (a *App) lookupCar(ctx context.Context, arg string) (models.Car, error) {
	if arg == "" {
		var err error
		if arg, err = a.prompt("Car id"); err != nil {
			return models.Car{}, err
		}
	}
	id, err := parseID(arg)
	if err != nil {
		return models.Car{}, err
	}

	if car, ok := a.state.Cars.Find(id); ok {
		return car, nil
	}
	if _, err := a.state.Cars.Load(ctx); err != nil {
		return models.Car{}, err
	}
	if car, ok := a.state.Cars.Find(id); ok {
		return car, nil
	}
	return models.Car{}, fmt.Errorf("car #%d not found", id)
}

// carForm prompts for every car field, offering current values as defaults.
func (a *App) carForm(cur models.CarPayload) (models.CarPayload, error) {
	var (
		p   = cur
		err error
	)
	if p.Brand, err = a.promptDefault("Brand", cur.Brand); err != nil {
		return p, err
	}
	if p.Model, err = a.promptDefault("Model", cur.Model); err != nil {
		return p, err
	}

	year := ""
	if cur.Year != 0 {
		year = strconv.Itoa(cur.Year)
	}
	if year, err = a.promptDefault("Year", year); err != nil {
		return p, err
	}
	if p.Year, err = parseYear(year); err != nil {
		return p, err
	}

	if p.Color, err = a.promptDefault("Color", cur.Color); err != nil {
		return p, err
	}
	if p.License, err = a.promptDefault("License plate", cur.License); err != nil {
		return p, err
	}
	return p, nil
}

// pickOwner lists the known users and asks for the owner id. An empty
// answer yields 0, which the car cache rejects.
func (a *App) pickOwner() (int64, error) {
	if users := a.snapshotUsers(); len(users) > 0 {
		for _, u := range users {
			a.println(dimStyle.Render(fmt.Sprintf("  %d  %s", u.ID, u.Username)))
		}
	}
	v, err := a.prompt("Owner id")
	if err != nil || v == "" {
		return 0, err
	}
	return parseID(v)
}
