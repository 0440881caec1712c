// Package resources binds the graphing entities to CRUD endpoints.
package resources

import (
	"maps"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/graphing-app/internal/datastore"
	"github.com/tphakala/graphing-app/internal/datastore/entities"
	"github.com/tphakala/graphing-app/internal/logger"
	"github.com/tphakala/graphing-app/internal/serializers"
)

// Resource names as they appear in URLs.
const (
	ResourceDataset       = "dataset"
	ResourceSample        = "sample"
	ResourceSampleSignal  = "samplesignal"
	ResourceTarget        = "target"
	ResourceUmapPlotPoint = "umapplotpoint"
)

// Handlers is the handler set bound to one resource.
type Handlers struct {
	List          echo.HandlerFunc
	Retrieve      echo.HandlerFunc
	Create        echo.HandlerFunc
	Update        echo.HandlerFunc
	PartialUpdate echo.HandlerFunc
	Delete        echo.HandlerFunc
}

// Controller owns the route table. The table is built in New and never
// modified, so it is safe for concurrent use.
type Controller struct {
	ds     datastore.Interface
	log    logger.Logger
	routes map[string]Handlers
	names  []string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger overrides the module logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// GetLogger returns the resources module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api").Module("resources")
}

// New builds the route table over ds.
func New(ds datastore.Interface, opts ...Option) *Controller {
	c := &Controller{ds: ds, log: GetLogger()}
	for _, opt := range opts {
		opt(c)
	}

	c.routes = map[string]Handlers{
		ResourceDataset: binding[entities.Dataset, serializers.DatasetInput, serializers.Dataset]{
			name:   ResourceDataset,
			repo:   ds.Datasets,
			decode: serializers.DecodeDataset,
			apply:  serializers.DatasetInput.Apply,
			render: serializers.NewDataset,
		}.handlers(),
		ResourceSample: binding[entities.Sample, serializers.SampleInput, serializers.Sample]{
			name:   ResourceSample,
			repo:   ds.Samples,
			decode: serializers.DecodeSample,
			apply:  serializers.SampleInput.Apply,
			render: serializers.NewSample,
		}.handlers(),
		ResourceSampleSignal: binding[entities.SampleSignal, serializers.SampleSignalInput, serializers.SampleSignal]{
			name:   ResourceSampleSignal,
			repo:   ds.SampleSignals,
			decode: serializers.DecodeSampleSignal,
			apply:  serializers.SampleSignalInput.Apply,
			render: serializers.NewSampleSignal,
		}.handlers(),
		ResourceTarget: binding[entities.Target, serializers.TargetInput, serializers.Target]{
			name:   ResourceTarget,
			repo:   ds.Targets,
			decode: serializers.DecodeTarget,
			apply:  serializers.TargetInput.Apply,
			render: serializers.NewTarget,
		}.handlers(),
		ResourceUmapPlotPoint: binding[entities.UmapPlotPoint, serializers.UmapPlotPointInput, serializers.UmapPlotPoint]{
			name:   ResourceUmapPlotPoint,
			repo:   ds.UmapPlotPoints,
			decode: serializers.DecodeUmapPlotPoint,
			apply:  serializers.UmapPlotPointInput.Apply,
			render: serializers.NewUmapPlotPoint,
		}.handlers(),
	}
	c.names = slices.Sorted(maps.Keys(c.routes))
	return c
}

// Resources returns the bound resource names, sorted.
func (c *Controller) Resources() []string {
	return slices.Clone(c.names)
}

// Handlers returns the handler set for name.
func (c *Controller) Handlers(name string) (Handlers, bool) {
	h, ok := c.routes[name]
	return h, ok
}

// Register mounts the API root and every resource on g. Paths carry a
// trailing slash; the server adds it to requests that omit it.
func (c *Controller) Register(g *echo.Group) {
	g.GET("/", c.root)
	for _, name := range c.names {
		h := c.routes[name]
		g.GET("/"+name+"/", h.List)
		g.POST("/"+name+"/", h.Create)
		g.GET("/"+name+"/:id/", h.Retrieve)
		g.PUT("/"+name+"/:id/", h.Update)
		g.PATCH("/"+name+"/:id/", h.PartialUpdate)
		g.DELETE("/"+name+"/:id/", h.Delete)
	}
	c.log.Debug("resource routes registered", logger.Int("resources", len(c.names)))
}
