package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spboyer/loadout/internal/models"
)

// column is a logical field and the header names accepted for it.
type column struct {
	field   string
	headers []string
}

var (
	itemID      = column{"id", []string{"id", "pallet", "pallet_id", "pallets"}}
	itemWeight  = column{"weight", []string{"weight"}}
	itemProfit  = column{"profit", []string{"profit", "value"}}
	truckID     = column{"id", []string{"id", "truck", "truck_id"}}
	truckCap    = column{"capacity", []string{"capacity", "max_weight"}}
	truckPallet = column{"max_items", []string{"max_items", "pallets", "max_pallets"}}
)

func (c column) lookup(row Row) (string, bool) {
	for _, h := range c.headers {
		if v, ok := row[h]; ok {
			return v, true
		}
	}
	return "", false
}

func (c column) require(rows []Row, name string) error {
	if len(rows) == 0 {
		return nil
	}
	if _, ok := c.lookup(rows[0]); !ok {
		return fmt.Errorf("csv: %s: missing %s column (accepted headers: %s)",
			name, c.field, strings.Join(c.headers, ", "))
	}
	return nil
}

// LoadItems reads a pallet file with id, weight and profit columns.
func LoadItems(path string) ([]models.Item, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return ParseItems(rows, path)
}

// LoadItemsRange is LoadItems restricted to data rows [start, end].
func LoadItemsRange(path string, start, end int) ([]models.Item, error) {
	rows, err := LoadCSVRange(path, start, end)
	if err != nil {
		return nil, err
	}
	return ParseItems(rows, path)
}

// ParseItems converts rows into validated items.
func ParseItems(rows []Row, name string) ([]models.Item, error) {
	for _, c := range []column{itemID, itemWeight, itemProfit} {
		if err := c.require(rows, name); err != nil {
			return nil, err
		}
	}

	items := make([]models.Item, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		id, err := parseInt(row, itemID, name, line)
		if err != nil {
			return nil, err
		}
		weight, err := parseFloat(row, itemWeight, name, line)
		if err != nil {
			return nil, err
		}
		profit, err := parseFloat(row, itemProfit, name, line)
		if err != nil {
			return nil, err
		}
		items = append(items, models.NewItem(id, weight, profit))
	}

	if err := models.ValidateItems(items); err != nil {
		return nil, fmt.Errorf("csv: %s: %w", name, err)
	}
	return items, nil
}

// LoadContainers reads a truck file with id and capacity columns and an
// optional pallet-count column. An empty pallet count means no limit.
func LoadContainers(path string) ([]models.Container, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return ParseContainers(rows, path)
}

// ParseContainers converts rows into validated containers.
func ParseContainers(rows []Row, name string) ([]models.Container, error) {
	if err := truckCap.require(rows, name); err != nil {
		return nil, err
	}

	containers := make([]models.Container, 0, len(rows))
	seen := make(map[int]struct{}, len(rows))
	for i, row := range rows {
		line := i + 2

		id := i + 1
		if _, ok := truckID.lookup(row); ok {
			v, err := parseInt(row, truckID, name, line)
			if err != nil {
				return nil, err
			}
			id = v
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("csv: %s line %d: duplicate truck id %d", name, line, id)
		}
		seen[id] = struct{}{}

		capacity, err := parseFloat(row, truckCap, name, line)
		if err != nil {
			return nil, err
		}
		c := models.Container{ID: id, Capacity: capacity}

		if raw, ok := truckPallet.lookup(row); ok && raw != "" {
			k, err := parseInt(row, truckPallet, name, line)
			if err != nil {
				return nil, err
			}
			c.MaxItems = &k
		}

		if err := models.ValidateContainer(c); err != nil {
			return nil, fmt.Errorf("csv: %s line %d: %w", name, line, err)
		}
		containers = append(containers, c)
	}
	return containers, nil
}

// FindContainer returns the container with the given id.
func FindContainer(containers []models.Container, id int) (models.Container, error) {
	for _, c := range containers {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Container{}, fmt.Errorf("truck %d not found (%d trucks loaded)", id, len(containers))
}

// WriteItems writes items in the layout LoadItems reads.
func WriteItems(w io.Writer, items []models.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"pallet", "weight", "profit"}); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write([]string{
			strconv.Itoa(it.ID),
			formatFloat(it.Weight),
			formatFloat(it.Profit),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteContainers writes containers in the layout LoadContainers reads.
func WriteContainers(w io.Writer, containers []models.Container) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"truck", "capacity", "pallets"}); err != nil {
		return err
	}
	for _, c := range containers {
		limit := ""
		if c.MaxItems != nil {
			limit = strconv.Itoa(*c.MaxItems)
		}
		if err := cw.Write([]string{strconv.Itoa(c.ID), formatFloat(c.Capacity), limit}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseInt(row Row, c column, name string, line int) (int, error) {
	raw, _ := c.lookup(row)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("csv: %s line %d: %s %q is not an integer", name, line, c.field, raw)
	}
	return v, nil
}

func parseFloat(row Row, c column, name string, line int) (float64, error) {
	raw, _ := c.lookup(row)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("csv: %s line %d: %s %q is not a number", name, line, c.field, raw)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
