package logging

// Convenience functions for quick logging without getting a logger first.
// All are no-ops when the category is disabled.

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootDebug logs debug to the boot category.
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

// Session logs to the session category.
func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}

// SessionDebug logs debug to the session category.
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}

// SessionWarn logs a warning to the session category.
func SessionWarn(format string, args ...interface{}) {
	Get(CategorySession).Warn(format, args...)
}

// Backend logs to the backend category.
func Backend(format string, args ...interface{}) {
	Get(CategoryBackend).Info(format, args...)
}

// BackendDebug logs debug to the backend category.
func BackendDebug(format string, args ...interface{}) {
	Get(CategoryBackend).Debug(format, args...)
}

// BackendWarn logs a warning to the backend category.
func BackendWarn(format string, args ...interface{}) {
	Get(CategoryBackend).Warn(format, args...)
}

// Brain logs to the brain category.
func Brain(format string, args ...interface{}) {
	Get(CategoryBrain).Info(format, args...)
}

// BrainDebug logs debug to the brain category.
func BrainDebug(format string, args ...interface{}) {
	Get(CategoryBrain).Debug(format, args...)
}

// Lab logs to the lab category.
func Lab(format string, args ...interface{}) {
	Get(CategoryLab).Info(format, args...)
}

// LabDebug logs debug to the lab category.
func LabDebug(format string, args ...interface{}) {
	Get(CategoryLab).Debug(format, args...)
}

// LabWarn logs a warning to the lab category.
func LabWarn(format string, args ...interface{}) {
	Get(CategoryLab).Warn(format, args...)
}

// Store logs to the store category.
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreDebug logs debug to the store category.
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// Chat logs to the chat category.
func Chat(format string, args ...interface{}) {
	Get(CategoryChat).Info(format, args...)
}

// ChatDebug logs debug to the chat category.
func ChatDebug(format string, args ...interface{}) {
	Get(CategoryChat).Debug(format, args...)
}
