package mockapi

import (
	"sort"
	"sync"

	"github.com/HristoTrendafilov/pet-store/internal/api"
)

// Store is the mock backend's in-memory pet table. It is deliberately
// ephemeral: every run starts from the fixture data again.
type Store struct {
	mu     sync.Mutex
	pets   map[int]api.Pet
	kinds  []api.PetKind
	nextID int
}

// NewStore returns an empty store with the standard kind list.
func NewStore() *Store {
	return &Store{
		pets: map[int]api.Pet{},
		kinds: []api.PetKind{
			{Value: 1, DisplayName: "Cat"},
			{Value: 2, DisplayName: "Dog"},
			{Value: 3, DisplayName: "Parrot"},
		},
		nextID: 1,
	}
}

// SeedStore returns a store preloaded with the well-known fixture pets
// (ids 42, 43, 44).
func SeedStore() *Store {
	s := NewStore()
	for _, pet := range fixturePets() {
		s.mu.Lock()
		s.pets[pet.PetID] = pet
		if pet.PetID >= s.nextID {
			s.nextID = pet.PetID + 1
		}
		s.mu.Unlock()
	}
	return s
}

func fixturePets() []api.Pet {
	date := func(value string) api.Date {
		d, err := api.ParseDate(value)
		if err != nil {
			panic(err)
		}
		return d
	}
	return []api.Pet{
		{PetID: 42, PetFormData: api.PetFormData{
			PetName: "Gosho", Kind: 1, Age: 2,
			Notes:     "White fur, very soft.",
			AddedDate: date("2022-10-31"),
		}},
		{PetID: 43, PetFormData: api.PetFormData{
			PetName: "Pesho", Kind: 2, Age: 5,
			AddedDate: date("2022-10-25"),
		}},
		{PetID: 44, PetFormData: api.PetFormData{
			PetName: "Kenny", Kind: 3, Age: 1,
			Notes:          "Doesn't speak. Has the sniffles.",
			HealthProblems: true,
			AddedDate:      date("2022-10-27"),
		}},
	}
}

// Kinds returns the reference data.
func (s *Store) Kinds() []api.PetKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.PetKind, len(s.kinds))
	copy(out, s.kinds)
	return out
}

// List returns the summary projection of every pet, ordered by id.
func (s *Store) List() []api.PetListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.PetListItem, 0, len(s.pets))
	for _, pet := range s.pets {
		out = append(out, api.PetListItem{
			PetID:     pet.PetID,
			PetName:   pet.PetName,
			AddedDate: pet.AddedDate,
			Kind:      pet.Kind,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PetID < out[j].PetID })
	return out
}

// Get returns one full record.
func (s *Store) Get(petID int) (api.Pet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pet, ok := s.pets[petID]
	return pet, ok
}

// Create assigns the next id and stores the record.
func (s *Store) Create(data api.PetFormData) api.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	pet := api.Pet{PetID: s.nextID, PetFormData: data}
	s.pets[pet.PetID] = pet
	s.nextID++
	return pet
}

// Update replaces an existing record.
func (s *Store) Update(petID int, data api.PetFormData) (api.Pet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pets[petID]; !ok {
		return api.Pet{}, false
	}
	pet := api.Pet{PetID: petID, PetFormData: data}
	s.pets[petID] = pet
	return pet, true
}

// Delete removes a record and returns it.
func (s *Store) Delete(petID int) (api.Pet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pet, ok := s.pets[petID]
	if !ok {
		return api.Pet{}, false
	}
	delete(s.pets, petID)
	return pet, true
}
