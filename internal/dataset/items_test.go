package dataset

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spboyer/loadout/internal/models"
)

func TestLoadItems(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		want    []models.Item
		wantErr string
	}{
		{
			name: "canonical headers",
			csv:  "pallet,weight,profit\n1,10,20\n2,4,6\n",
			want: []models.Item{models.NewItem(1, 10, 20), models.NewItem(2, 4, 6)},
		},
		{
			name: "aliases and column order",
			csv:  "Value,Weight,ID\n3.5,2,7\n",
			want: []models.Item{models.NewItem(7, 2, 3.5)},
		},
		{
			name: "extra columns ignored",
			csv:  "pallet,width,weight,profit,type\n1,2,3,4,A\n",
			want: []models.Item{models.NewItem(1, 3, 4)},
		},
		{
			name: "headers only",
			csv:  "pallet,weight,profit\n",
			want: []models.Item{},
		},
		{
			name:    "missing profit column",
			csv:     "pallet,weight\n1,2\n",
			wantErr: "missing profit column",
		},
		{
			name:    "non-numeric weight",
			csv:     "pallet,weight,profit\n1,heavy,2\n",
			wantErr: `line 2: weight "heavy" is not a number`,
		},
		{
			name:    "fractional id",
			csv:     "pallet,weight,profit\n1.5,1,2\n",
			wantErr: `id "1.5" is not an integer`,
		},
		{
			name:    "duplicate ids",
			csv:     "pallet,weight,profit\n1,1,2\n1,3,4\n",
			wantErr: "duplicate id 1",
		},
		{
			name:    "negative profit",
			csv:     "pallet,weight,profit\n1,1,-2\n",
			wantErr: "profit must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, t.TempDir(), "items.csv", tt.csv)

			items, err := LoadItems(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, items)
		})
	}
}

func TestLoadItems_InvalidValuesWrapSentinel(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "items.csv", "pallet,weight,profit\n1,-1,2\n")
	_, err := LoadItems(path)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLoadItemsRange(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "items.csv", "pallet,weight,profit\n1,1,1\n2,2,2\n3,3,3\n4,4,4\n")
	items, err := LoadItemsRange(path, 2, 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 3, items[1].ID)
}

func TestLoadContainers(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		want    []models.Container
		wantErr string
	}{
		{
			name: "with and without pallet limit",
			csv:  "truck,capacity,pallets\n1,100,5\n2,250,\n",
			want: []models.Container{models.WithMaxItems(100, 5), models.Unlimited(250)},
		},
		{
			name: "capacity only gets sequential ids",
			csv:  "capacity\n40\n60\n",
			want: []models.Container{models.Unlimited(40), models.Unlimited(60)},
		},
		{
			name:    "missing capacity",
			csv:     "truck,pallets\n1,2\n",
			wantErr: "missing capacity column",
		},
		{
			name:    "duplicate truck",
			csv:     "truck,capacity\n1,10\n1,20\n",
			wantErr: "duplicate truck id 1",
		},
		{
			name:    "negative pallets",
			csv:     "truck,capacity,pallets\n1,10,-1\n",
			wantErr: "container.max_items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, t.TempDir(), "trucks.csv", tt.csv)

			got, err := LoadContainers(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Equal(t, i+1, got[i].ID)
				assert.Equal(t, tt.want[i].Capacity, got[i].Capacity)
				assert.Equal(t, tt.want[i].MaxItems, got[i].MaxItems)
			}
		})
	}
}

func TestFindContainer(t *testing.T) {
	cs := []models.Container{{ID: 3, Capacity: 10}, {ID: 7, Capacity: 20}}

	c, err := FindContainer(cs, 7)
	require.NoError(t, err)
	assert.Equal(t, 20.0, c.Capacity)

	_, err = FindContainer(cs, 1)
	assert.ErrorContains(t, err, "truck 1 not found")
}

func TestWriteItemsAndContainers_ReadBack(t *testing.T) {
	items := []models.Item{models.NewItem(1, 2.5, 10), models.NewItem(2, 3, 0)}
	containers := []models.Container{models.Unlimited(20), models.WithMaxItems(30, 2)}
	containers[0].ID, containers[1].ID = 1, 2

	var buf bytes.Buffer
	require.NoError(t, WriteItems(&buf, items))
	assert.Equal(t, "pallet,weight,profit\n1,2.5,10\n2,3,0\n", buf.String())

	dir := t.TempDir()
	itemsPath := writeCSV(t, dir, "items.csv", buf.String())
	gotItems, err := LoadItems(itemsPath)
	require.NoError(t, err)
	assert.Equal(t, items, gotItems)

	buf.Reset()
	require.NoError(t, WriteContainers(&buf, containers))
	trucksPath := filepath.Join(dir, "trucks.csv")
	writeCSV(t, dir, "trucks.csv", buf.String())
	gotContainers, err := LoadContainers(trucksPath)
	require.NoError(t, err)
	assert.Equal(t, containers, gotContainers)
}
