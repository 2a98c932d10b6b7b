package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/auth"
	"github.com/abishek1718/package-locker/internal/metrics"
	"github.com/abishek1718/package-locker/internal/repository"
	"github.com/abishek1718/package-locker/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MiB

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStorageError maps facade errors onto the HTTP taxonomy; anything
// unexpected becomes a generic 500 with the detail logged server-side.
func (s *Server) respondStorageError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, repository.ErrObjectNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, repository.ErrLockerUnavailable):
		respondError(w, http.StatusBadRequest, "Locker not available")
	case errors.Is(err, repository.ErrDuplicateEmail):
		respondError(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, storage.ErrSelfDelete):
		respondError(w, http.StatusBadRequest, "Cannot delete your own account")
	case errors.Is(err, storage.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, "Invalid role")
	case errors.Is(err, storage.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		s.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues(operation).Inc()
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if loginRequest.Email == "" || loginRequest.Password == "" {
		respondError(w, http.StatusBadRequest, "Missing email or password")
		return
	}

	user, err := s.storage.Authenticate(r.Context(), loginRequest.Email, loginRequest.Password)
	if err != nil {
		s.respondStorageError(w, "login", err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		s.respondStorageError(w, "login", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (s *Server) handleListLockers(w http.ResponseWriter, r *http.Request) {
	lockers, err := s.storage.ListLockers(r.Context())
	if err != nil {
		s.respondStorageError(w, "list_lockers", err)
		return
	}
	respondJSON(w, http.StatusOK, lockers)
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := s.storage.ListPackages(r.Context())
	if err != nil {
		s.respondStorageError(w, "list_packages", err)
		return
	}
	respondJSON(w, http.StatusOK, packages)
}

func (s *Server) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	var packageRequest struct {
		LockerID   string  `json:"lockerId"`
		ResidentID string  `json:"residentId"`
		PhotoURL   *string `json:"photoUrl"`
	}

	if err := json.NewDecoder(r.Body).Decode(&packageRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if packageRequest.LockerID == "" || packageRequest.ResidentID == "" {
		respondError(w, http.StatusBadRequest, "Missing lockerId or residentId")
		return
	}

	pkg, err := s.storage.CreatePackage(r.Context(), packageRequest.LockerID, packageRequest.ResidentID, packageRequest.PhotoURL)
	if err != nil {
		s.respondStorageError(w, "create_package", err)
		return
	}

	respondJSON(w, http.StatusCreated, pkg)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	pkg, err := s.storage.GetPackage(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			respondError(w, http.StatusNotFound, "Package not found")
			return
		}
		s.respondStorageError(w, "get_package", err)
		return
	}

	respondJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleUpdatePackage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var statusRequest struct {
		Status string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&statusRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if statusRequest.Status != repository.PackagePickedUp {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	pkg, err := s.storage.MarkPickedUp(r.Context(), id)
	if err != nil {
		s.respondStorageError(w, "mark_picked_up", err)
		return
	}

	respondJSON(w, http.StatusOK, pkg)
}

func (s *Server) handleListResidents(w http.ResponseWriter, r *http.Request) {
	residents, err := s.storage.ListResidents(r.Context())
	if err != nil {
		s.respondStorageError(w, "list_residents", err)
		return
	}
	respondJSON(w, http.StatusOK, residents)
}

func (s *Server) handleCreateResident(w http.ResponseWriter, r *http.Request) {
	var residentRequest struct {
		Name       string  `json:"name"`
		Email      string  `json:"email"`
		UnitNumber *string `json:"unitNumber"`
	}

	if err := json.NewDecoder(r.Body).Decode(&residentRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if residentRequest.Name == "" || residentRequest.Email == "" {
		respondError(w, http.StatusBadRequest, "Name and Email are required")
		return
	}

	resident, err := s.storage.CreateResident(r.Context(), residentRequest.Name, residentRequest.Email, residentRequest.UnitNumber)
	if err != nil {
		s.respondStorageError(w, "create_resident", err)
		return
	}

	respondJSON(w, http.StatusCreated, resident)
}

// readUploadedFile pulls the "file" part out of a multipart form.
func readUploadedFile(r *http.Request) (string, string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", "", nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", nil, err
	}

	return header.Filename, header.Header.Get("Content-Type"), data, nil
}

func (s *Server) handleImportResidents(w http.ResponseWriter, r *http.Request) {
	_, _, data, err := readUploadedFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	result := s.storage.ImportResidentsCSV(r.Context(), string(data))
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportRecipients(w http.ResponseWriter, r *http.Request) {
	_, _, data, err := readUploadedFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	result := s.storage.ImportRecipientsCSV(r.Context(), string(data))
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.storage.ListUsers(r.Context())
	if err != nil {
		s.respondStorageError(w, "list_users", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var userRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&userRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if userRequest.Name == "" || userRequest.Email == "" || userRequest.Password == "" {
		respondError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	user, err := s.storage.CreateUser(r.Context(), userRequest.Name, userRequest.Email, userRequest.Password, userRequest.Role)
	if err != nil {
		s.respondStorageError(w, "create_user", err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "Missing ID")
		return
	}

	session := sessionFromContext(r.Context())
	if err := s.storage.DeleteUser(r.Context(), id, session.UserID); err != nil {
		s.respondStorageError(w, "delete_user", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.logger.Warn("upload requested but object store is not configured")
		respondError(w, http.StatusInternalServerError, "Server configuration error: missing object store credentials")
		return
	}

	filename, contentType, data, err := readUploadedFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided")
		return
	}

	url, err := s.store.Upload(r.Context(), filename, contentType, bytes.NewReader(data))
	if err != nil {
		s.logger.Error("object upload failed", zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("upload").Inc()
		respondError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	result, err := s.storage.SweepReminders(r.Context())
	if err != nil {
		s.respondStorageError(w, "sweep_reminders", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
