package resources

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/graphing-app/internal/datastore"
	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/serializers"
)

// binding ties an entity to its repository, input decoder and response
// renderer. E is the stored entity, I the decoded input and R the response.
type binding[E entities.Record, I any, R any] struct {
	name   string
	repo   func() datastore.Repository[E]
	decode func(body []byte, mode serializers.Mode) (I, error)
	apply  func(in I, e *E)
	render func(e E) R
}

func (b binding[E, I, R]) handlers() Handlers {
	return Handlers{
		List:          b.list,
		Retrieve:      b.retrieve,
		Create:        b.create,
		Update:        b.update(serializers.ModeReplace),
		PartialUpdate: b.update(serializers.ModePartial),
		Delete:        b.delete,
	}
}

func (b binding[E, I, R]) list(c echo.Context) error {
	items, err := b.repo().FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializers.List(items, b.render))
}

func (b binding[E, I, R]) retrieve(c echo.Context) error {
	id, err := b.parseID(c)
	if err != nil {
		return err
	}
	record, err := b.repo().FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b.render(*record))
}

func (b binding[E, I, R]) create(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	in, err := b.decode(body, serializers.ModeCreate)
	if err != nil {
		return err
	}

	var record E
	b.apply(in, &record)
	if err := b.repo().Insert(c.Request().Context(), &record); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b.render(record))
}

// update loads the record first so a missing id is a 404 even when the
// body is also invalid.
func (b binding[E, I, R]) update(mode serializers.Mode) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := b.parseID(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		record, err := b.repo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		body, err := readBody(c)
		if err != nil {
			return err
		}
		in, err := b.decode(body, mode)
		if err != nil {
			return err
		}

		b.apply(in, record)
		if err := b.repo().Update(ctx, record); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, b.render(*record))
	}
}

func (b binding[E, I, R]) delete(c echo.Context) error {
	id, err := b.parseID(c)
	if err != nil {
		return err
	}
	if err := b.repo().Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// parseID treats an id that cannot name a row as not found.
func (b binding[E, I, R]) parseID(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, errors.NotFound(b.name, raw)
	}
	return uint(id), nil
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return nil, httpErr
		}
		return nil, errors.New(err).
			Component("api").
			Category(errors.CategoryHTTP).
			Context("operation", "read_body").
			Build()
	}
	return body, nil
}

// root lists the absolute URL of every resource collection.
func (c *Controller) root(ctx echo.Context) error {
	base := ctx.Scheme() + "://" + ctx.Request().Host + strings.TrimSuffix(ctx.Path(), "/")
	out := make(map[string]string, len(c.names))
	for _, name := range c.names {
		out[name] = base + "/" + name + "/"
	}
	return ctx.JSON(http.StatusOK, out)
}
