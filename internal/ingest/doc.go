// Package ingest loads UK-DALE style house directories into the dataset store.
//
// A house directory holds labels.dat ("<channel> <label>" per line) and one
// channel_<n>.dat per channel ("<unix seconds> <watts>" per line). The
// "aggregate" channel becomes the site meter; every other label becomes an
// appliance whose instance counts channels of the same type in channel
// order. Underscores in labels are read as spaces.
//
// The catalog always goes to SQLite. Readings go to SQLite or InfluxDB.
package ingest
