package entities

// Record is implemented by every model stored through a repository.
type Record interface {
	TableName() string
	GetID() uint
}

// Dataset groups samples.
type Dataset struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null"`
}

// TableName returns the table backing Dataset.
func (Dataset) TableName() string { return "datasets" }

// GetID returns the primary key.
func (d Dataset) GetID() uint { return d.ID }

// Target is a measured target, referenced by sample signals.
type Target struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null"`
}

// TableName returns the table backing Target.
func (Target) TableName() string { return "targets" }

// GetID returns the primary key.
func (t Target) GetID() uint { return t.ID }

// Sample is one well on a plate, belonging to a dataset.
type Sample struct {
	ID           uint     `gorm:"primaryKey"`
	Metadata     Metadata `gorm:"type:text;not null"`
	DatasetID    uint     `gorm:"not null;index:idx_samples_dataset_id"`
	Dataset      Dataset  `gorm:"foreignKey:DatasetID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	PlateBarcode string   `gorm:"column:plate_barcode;size:255;not null"`
	WellID       string   `gorm:"column:well_id;size:255;not null"`
}

// TableName returns the table backing Sample.
func (Sample) TableName() string { return "samples" }

// GetID returns the primary key.
func (s Sample) GetID() uint { return s.ID }

// SampleSignal is a signal value measured for a sample against a target.
type SampleSignal struct {
	ID       uint    `gorm:"primaryKey"`
	Signal   float64 `gorm:"not null"`
	SampleID uint    `gorm:"not null;index:idx_sample_signals_sample_id"`
	Sample   Sample  `gorm:"foreignKey:SampleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	TargetID uint    `gorm:"not null;index:idx_sample_signals_target_id"`
	Target   Target  `gorm:"foreignKey:TargetID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the table backing SampleSignal.
func (SampleSignal) TableName() string { return "sample_signals" }

// GetID returns the primary key.
func (s SampleSignal) GetID() uint { return s.ID }

// UmapPlotPoint is the 2D UMAP projection of a sample.
type UmapPlotPoint struct {
	ID       uint    `gorm:"primaryKey"`
	XCoor    float64 `gorm:"column:x_coor;not null"`
	YCoor    float64 `gorm:"column:y_coor;not null"`
	SampleID uint    `gorm:"not null;index:idx_umap_plot_points_sample_id"`
	Sample   Sample  `gorm:"foreignKey:SampleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the table backing UmapPlotPoint.
func (UmapPlotPoint) TableName() string { return "umap_plot_points" }

// GetID returns the primary key.
func (p UmapPlotPoint) GetID() uint { return p.ID }

// All returns one zero value of every model in dependency order, for migration.
func All() []any {
	return []any{
		&Dataset{},
		&Target{},
		&Sample{},
		&SampleSignal{},
		&UmapPlotPoint{},
	}
}
