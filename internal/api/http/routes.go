package httpapi

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-history/internal/weather"
)

var validate = validator.New()

// Ingester triggers ingestion; *weather.Runner satisfies it.
type Ingester interface {
	RunBatch(ctx context.Context, names []string) (weather.BatchReport, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. The query
// endpoints only read; POST /ingest is the single write entry point.
func RegisterRoutes(app *fiber.App, reader weather.Reader, ingester Ingester) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		locs, err := reader.ListLocations(c.UserContext())
		if err != nil {
			return internalError(err, "failed to list cities")
		}
		return c.JSON(fiber.Map{"cities": locs})
	})

	v1.Get("/cities/:id", func(c *fiber.Ctx) error {
		id, err := parseCityID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		loc, err := lookupCity(c, reader, id)
		if err != nil {
			return err
		}
		return c.JSON(loc)
	})

	v1.Get("/cities/:id/weather", func(c *fiber.Ctx) error {
		var q weatherQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		loc, err := lookupCity(c, reader, q.ID)
		if err != nil {
			return err
		}
		days, err := reader.RecentDays(c.UserContext(), q.ID, q.Days)
		if err != nil {
			return internalError(err, "failed to fetch weather data")
		}
		return c.JSON(fiber.Map{
			"location": loc,
			"days":     days,
		})
	})

	v1.Get("/cities/:id/stats", func(c *fiber.Ctx) error {
		id, err := parseCityID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		loc, err := lookupCity(c, reader, id)
		if err != nil {
			return err
		}
		stats, err := reader.PeriodStats(c.UserContext(), id)
		if err != nil {
			return internalError(err, "failed to fetch statistics")
		}
		return c.JSON(fiber.Map{
			"location": loc,
			"stats":    stats,
		})
	})

	v1.Get("/rankings/:kind", func(c *fiber.Ctx) error {
		q := rankingQuery{
			Kind:   c.Params("kind"),
			Period: c.QueryInt("period", 30),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		top, err := reader.TopStat(c.UserContext(), weather.Ranking(q.Kind), q.Period)
		if err != nil {
			if errors.Is(err, weather.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no statistics found")
			}
			return internalError(err, "failed to rank cities")
		}
		return c.JSON(top)
	})

	v1.Post("/ingest", func(c *fiber.Ctx) error {
		var req ingestRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), ingestTimeout)
		defer cancel()

		report, err := ingester.RunBatch(ctx, []string{req.Name})
		if err != nil {
			switch {
			case errors.Is(err, weather.ErrStorageUnavailable):
				return fiber.NewError(fiber.StatusServiceUnavailable, "storage unavailable")
			case errors.Is(err, context.DeadlineExceeded):
				return fiber.NewError(fiber.StatusServiceUnavailable, "ingest timed out, another batch may be running")
			}
			return internalError(err, "ingest failed")
		}
		if len(report.Results) == 0 {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "location could not be resolved or ingested")
		}
		return c.JSON(fiber.Map{
			"runId":  report.RunID,
			"result": report.Results[0],
		})
	})
}

// weatherQuery holds parameters for the day-records endpoint.
type weatherQuery struct {
	ID   int64 `validate:"gt=0"`
	Days int   `validate:"min=1,max=366"`
}

func (q *weatherQuery) bind(c *fiber.Ctx) error {
	id, err := parseCityID(c)
	if err != nil {
		return err
	}
	q.ID = id
	q.Days = c.QueryInt("days", 7)
	return validate.Struct(q)
}

// rankingQuery holds parameters for the rankings endpoint.
type rankingQuery struct {
	Kind   string `validate:"oneof=hottest coldest windiest"`
	Period int    `validate:"oneof=7 30"`
}

type ingestRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type cityParams struct {
	ID int64 `validate:"gt=0"`
}

func parseCityID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, errors.New("city id must be an integer")
	}
	p := cityParams{ID: int64(id)}
	if err := validate.Struct(p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func lookupCity(c *fiber.Ctx, reader weather.Reader, id int64) (weather.Location, error) {
	loc, err := reader.GetLocation(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, weather.ErrNotFound) {
			return weather.Location{}, fiber.NewError(fiber.StatusNotFound, "city not found")
		}
		return weather.Location{}, internalError(err, "failed to fetch city")
	}
	return loc, nil
}

func internalError(err error, msg string) error {
	log.Printf("ERROR: httpapi: %s: %v", msg, err)
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}
