// Package brapi2isa converts breeding trial data served over the Breeding API
// (BrAPI) into ISA-Tab files and per-level wide data tables.
//
// A conversion run is a pipeline of a few stages, each of which has an
// interface or a plain function in this package and richer implementations in
// sub-packages.
//
// 1. Source
//
//    A brapi2isa.Source hands out records one at a time and returns io.EOF
//    once it is exhausted. The brapi sub-package provides a Source which walks
//    the pages of a paginated BrAPI resource lazily, requesting a page only
//    when the previous one has been consumed. Collect drains a Source into a
//    slice when a stage needs the whole result set.
//
// 2. Discovery
//
//    The columns of a wide table are not known until every observation unit
//    of a study has been seen. DiscoverLevels scans the materialized units
//    once and records, for each observation level, the variables observed
//    and the sub-level tokens (block, plot, ...) present on its units.
//
// 3. Characteristics
//
//    Germplasm records are turned into (category, value) characteristics by a
//    static table of rules: some keys are renamed, list-valued keys are
//    flattened, and everything else is carried through as is.
//
// 4. Pivot
//
//    PivotBuilder emits one row per observation, filling the columns shared
//    by all observations of a unit once and copying that base row for each
//    observation. Accession numbers come from an AccessionCache which must be
//    filled before any unit is pivoted.
//
// 5. Sink
//
//    Rendered tables are wrapped in Artifacts and handed to a Sink: a local
//    directory, an S3 bucket, or a Kafka topic.
package brapi2isa
